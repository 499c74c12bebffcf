package voicelive

import (
	"strings"

	"github.com/r4hulp/call-center-voice-agent-accelerator/tools"
)

// Voice and turn-detection settings sent with the initial session.update.
const (
	sessionVoiceName        string  = "en-US-Aria:DragonHDLatestNeural"
	sessionVoiceType        string  = "azure-standard"
	sessionVoiceTemperature float64 = 0.8

	vadThreshold         float64 = 0.3
	vadPrefixPaddingMs   int     = 200
	vadSilenceDurationMs int     = 200

	eouModel     string  = "semantic_detection_v1"
	eouThreshold float64 = 0.01
	eouTimeout   int     = 2
)

// sessionInstructions builds the assistant instructions from the registered
// tool names so the prompt tracks whatever the registry holds.
func sessionInstructions(registry *tools.Registry) string {
	names := make([]string, 0)
	for _, t := range registry.All() {
		names = append(names, t.Name())
	}
	return "You are a helpful AI assistant for a customer service call center. " +
		"You have access to the following tools to help customers: " +
		strings.Join(names, ", ") + ". " +
		"Use these tools proactively when appropriate based on the customer's needs. " +
		"For example:\n" +
		"- Use 'send_email_summary' when the customer wants to receive a summary or when the call is ending\n" +
		"- Use 'book_appointment' when the customer wants to schedule a meeting\n" +
		"- Use 'lookup_information' when asked about policies, hours, or company info\n" +
		"- Use 'check_order_status' when the customer asks about their order\n" +
		"Always be polite, professional, and helpful."
}

// sessionUpdateEvent is the initial configuration message: instructions, turn
// detection, audio processing, voice selection, and the tool function
// definitions.
func sessionUpdateEvent(registry *tools.Registry) map[string]any {
	return map[string]any{
		"type": ClientEventTypeSessionUpdate,
		"session": map[string]any{
			"instructions": sessionInstructions(registry),
			"turn_detection": map[string]any{
				"type":                "azure_semantic_vad",
				"threshold":           vadThreshold,
				"prefix_padding_ms":   vadPrefixPaddingMs,
				"silence_duration_ms": vadSilenceDurationMs,
				"remove_filler_words": false,
				"end_of_utterance_detection": map[string]any{
					"model":     eouModel,
					"threshold": eouThreshold,
					"timeout":   eouTimeout,
				},
			},
			"input_audio_noise_reduction": map[string]any{"type": "azure_deep_noise_suppression"},
			"input_audio_echo_cancellation": map[string]any{"type": "server_echo_cancellation"},
			"voice": map[string]any{
				"name":        sessionVoiceName,
				"type":        sessionVoiceType,
				"temperature": sessionVoiceTemperature,
			},
			"tools":       registry.FunctionDefinitions(),
			"tool_choice": "auto",
		},
	}
}
