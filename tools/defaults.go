package tools

import (
	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"go.uber.org/zap"
)

// DefaultRegistry builds a registry with the reference tool set. Adding a
// tool is one constructor call here. sessionID resolves the upstream session
// id for tools that stamp it into their output.
func DefaultRegistry(logger shared.LoggerAdapter, sessionID func() string) *Registry {
	registry := NewRegistry(logger)
	registry.Register(NewEmailSummaryTool(logger, sessionID))
	registry.Register(NewAppointmentBookingTool(logger))
	registry.Register(NewKnowledgeBaseTool())
	registry.Register(NewOrderStatusTool())
	logger.Info("initialized tool registry", zap.Int("tools", len(registry.All())))
	return registry
}
