package tools

import (
	"context"

	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"go.uber.org/zap"
)

// EmailService simulates email delivery by logging the message. Swap in a
// real provider here for production use.
type EmailService struct {
	logger shared.LoggerAdapter
}

func NewEmailService(logger shared.LoggerAdapter) *EmailService {
	logger.Info("email service initialized in mock mode, emails will be simulated")
	return &EmailService{logger: logger}
}

func (s *EmailService) SendSummary(toEmail, subject, summary, callID string) bool {
	if callID == "" {
		callID = "N/A"
	}
	s.logger.Info("simulated email sent",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("call_id", callID),
		zap.String("summary", summary),
	)
	return true
}

// EmailSummaryTool emails a summary of the call. The session id is resolved
// lazily through sessionID because the upstream service assigns it after the
// tool is registered.
type EmailSummaryTool struct {
	service   *EmailService
	sessionID func() string
}

func NewEmailSummaryTool(logger shared.LoggerAdapter, sessionID func() string) *EmailSummaryTool {
	if sessionID == nil {
		sessionID = func() string { return "" }
	}
	return &EmailSummaryTool{
		service:   NewEmailService(logger),
		sessionID: sessionID,
	}
}

func (t *EmailSummaryTool) Name() string {
	return "send_email_summary"
}

func (t *EmailSummaryTool) Description() string {
	return "Sends an email with a summary of the call conversation. " +
		"Use this when the user requests a summary or when the call is ending."
}

func (t *EmailSummaryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"email": map[string]any{
				"type":        "string",
				"description": "The recipient's email address",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "A concise summary of the call conversation including key points discussed",
			},
		},
		"required": []string{"email", "summary"},
	}
}

func (t *EmailSummaryTool) Execute(_ context.Context, args map[string]any) (map[string]any, error) {
	email := stringArg(args, "email")
	summary := stringArg(args, "summary")
	if email == "" || summary == "" {
		return map[string]any{
			"success": false,
			"message": "Email and summary are required",
		}, nil
	}

	sent := t.service.SendSummary(email, "Call Summary", summary, t.sessionID())
	message := "Email sent successfully"
	if !sent {
		message = "Failed to send email"
	}
	return map[string]any{
		"success": sent,
		"message": message,
	}, nil
}
