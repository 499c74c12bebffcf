package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name   string
	result map[string]any
}

func (f *fakeTool) Name() string               { return f.name }
func (f *fakeTool) Description() string        { return "fake tool" }
func (f *fakeTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (f *fakeTool) Execute(context.Context, map[string]any) (map[string]any, error) {
	return f.result, nil
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	registry := NewRegistry(shared.NewNopLogger())
	registry.Register(&fakeTool{name: "lookup", result: map[string]any{"version": 1}})
	registry.Register(&fakeTool{name: "lookup", result: map[string]any{"version": 2}})

	assert.Len(t, registry.All(), 1)
	result, err := registry.Execute(context.Background(), "lookup", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"version": 2}, result)
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	registry := NewRegistry(shared.NewNopLogger())
	_, err := registry.Execute(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, shared.ErrToolNotFound)
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry(shared.NewNopLogger())
	registry.Register(&fakeTool{name: "a"})
	registry.Register(&fakeTool{name: "b"})
	registry.Unregister("a")
	registry.Unregister("never-existed")

	all := registry.All()
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].Name())
}

func TestFunctionDefinitionsShape(t *testing.T) {
	registry := NewRegistry(shared.NewNopLogger())
	registry.Register(NewKnowledgeBaseTool())
	registry.Register(NewOrderStatusTool())

	defs := registry.FunctionDefinitions()
	require.Len(t, defs, 2)

	// Registration order is preserved.
	assert.Equal(t, "lookup_information", defs[0]["name"])
	assert.Equal(t, "check_order_status", defs[1]["name"])
	for _, def := range defs {
		assert.Equal(t, "function", def["type"])
		assert.NotEmpty(t, def["description"])
		params, ok := def["parameters"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "object", params["type"])
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry(shared.NewNopLogger(), func() string { return "sess-1" })

	names := make([]string, 0, 4)
	for _, tool := range registry.All() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{
		"send_email_summary",
		"book_appointment",
		"lookup_information",
		"check_order_status",
	}, names)
}

func TestKnowledgeBaseLookup(t *testing.T) {
	tool := NewKnowledgeBaseTool()

	t.Run("known topic", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{"topic": "shipping"})
		require.NoError(t, err)
		assert.Equal(t, true, result["success"])
		assert.Equal(t, "shipping", result["topic"])
		assert.Contains(t, result["information"], "5-7 business days")
	})

	t.Run("case insensitive", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{"topic": "SHIPPING"})
		require.NoError(t, err)
		assert.Equal(t, true, result["success"])
	})

	t.Run("fuzzy match", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{"topic": "warranty information"})
		require.NoError(t, err)
		assert.Equal(t, true, result["success"])
		assert.Equal(t, "warranty", result["topic"])
	})

	t.Run("unknown topic lists alternatives", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{"topic": "nonexistent_topic"})
		require.NoError(t, err)
		assert.Equal(t, false, result["success"])
		assert.Equal(t, "No information found for topic: nonexistent_topic", result["message"])

		topics, ok := result["available_topics"].(string)
		require.True(t, ok)
		assert.Equal(t, []string{
			"business_hours", "cancellation", "contact", "pricing",
			"return_policy", "shipping", "support", "warranty",
		}, strings.Split(topics, ", "))
	})
}

func TestOrderStatus(t *testing.T) {
	tool := NewOrderStatusTool()

	t.Run("shipped order has tracking", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{"order_id": "ORD-12345"})
		require.NoError(t, err)
		assert.Equal(t, true, result["success"])
		assert.Equal(t, "shipped", result["status"])
		assert.Equal(t, "1Z999AA10123456784", result["tracking_number"])
		assert.Contains(t, result["message"], "Tracking number: 1Z999AA10123456784")
	})

	t.Run("lowercase order id normalized", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{"order_id": "ord-67890"})
		require.NoError(t, err)
		assert.Equal(t, true, result["success"])
		assert.Equal(t, "processing", result["status"])
		assert.NotContains(t, result, "tracking_number")
		assert.Contains(t, result["message"], "No tracking number yet")
	})

	t.Run("unknown order", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{"order_id": "ORD-00000"})
		require.NoError(t, err)
		assert.Equal(t, false, result["success"])
		assert.Contains(t, result["message"], "ORD-00000 not found")
	})
}

func TestAppointmentBooking(t *testing.T) {
	tool := NewAppointmentBookingTool(shared.NewNopLogger())

	t.Run("successful booking", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{
			"customer_name": "Jordan Smith",
			"date":          "2026-09-15",
			"time":          "14:30",
			"service_type":  "consultation",
		})
		require.NoError(t, err)
		assert.Equal(t, true, result["success"])
		assert.Equal(t, "Appointment successfully booked for Jordan Smith on 2026-09-15 at 14:30", result["message"])

		id, ok := result["appointment_id"].(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(id, "APT-"))

		details, ok := result["details"].(Appointment)
		require.True(t, ok)
		assert.Equal(t, "confirmed", details.Status)
		assert.Equal(t, "Not provided", details.Phone)
	})

	t.Run("missing required field", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{
			"customer_name": "Jordan Smith",
			"date":          "2026-09-15",
			"time":          "14:30",
		})
		require.NoError(t, err)
		assert.Equal(t, false, result["success"])
		assert.Equal(t, "Missing required fields for appointment booking", result["message"])
	})

	t.Run("bad date format", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{
			"customer_name": "Jordan Smith",
			"date":          "15/09/2026",
			"time":          "14:30",
			"service_type":  "consultation",
		})
		require.NoError(t, err)
		assert.Equal(t, false, result["success"])
		assert.Contains(t, result["message"], "Invalid date or time format")
	})

	t.Run("bad time format", func(t *testing.T) {
		result, err := tool.Execute(context.Background(), map[string]any{
			"customer_name": "Jordan Smith",
			"date":          "2026-09-15",
			"time":          "2:30 PM",
			"service_type":  "consultation",
		})
		require.NoError(t, err)
		assert.Equal(t, false, result["success"])
		assert.Contains(t, result["message"], "Invalid date or time format")
	})
}

func TestEmailSummary(t *testing.T) {
	t.Run("sends with lazy session id", func(t *testing.T) {
		sessionID := ""
		tool := NewEmailSummaryTool(shared.NewNopLogger(), func() string { return sessionID })

		// Simulate the session id arriving after registration.
		sessionID = "sess-99"
		result, err := tool.Execute(context.Background(), map[string]any{
			"email":   "customer@example.com",
			"summary": "Discussed order ORD-12345 delivery.",
		})
		require.NoError(t, err)
		assert.Equal(t, true, result["success"])
		assert.Equal(t, "Email sent successfully", result["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		tool := NewEmailSummaryTool(shared.NewNopLogger(), nil)
		result, err := tool.Execute(context.Background(), map[string]any{"email": "customer@example.com"})
		require.NoError(t, err)
		assert.Equal(t, false, result["success"])
		assert.Equal(t, "Email and summary are required", result["message"])
	})
}
