package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"go.uber.org/zap"
)

// Appointment is one confirmed booking.
type Appointment struct {
	AppointmentID string `json:"appointment_id"`
	CustomerName  string `json:"customer_name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	ServiceType   string `json:"service_type"`
	Phone         string `json:"phone"`
	Status        string `json:"status"`
}

// AppointmentBookingTool books appointments into an in-memory list standing
// in for a calendar service.
type AppointmentBookingTool struct {
	logger shared.LoggerAdapter
	booked []Appointment
}

func NewAppointmentBookingTool(logger shared.LoggerAdapter) *AppointmentBookingTool {
	return &AppointmentBookingTool{logger: logger}
}

func (t *AppointmentBookingTool) Name() string {
	return "book_appointment"
}

func (t *AppointmentBookingTool) Description() string {
	return "Books an appointment for the customer. " +
		"Use this when the user wants to schedule a meeting, consultation, or service."
}

func (t *AppointmentBookingTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"customer_name": map[string]any{
				"type":        "string",
				"description": "The customer's full name",
			},
			"date": map[string]any{
				"type":        "string",
				"description": "Appointment date in YYYY-MM-DD format",
			},
			"time": map[string]any{
				"type":        "string",
				"description": "Appointment time in HH:MM format (24-hour)",
			},
			"service_type": map[string]any{
				"type":        "string",
				"description": "Type of service or meeting (e.g., consultation, support, demo)",
			},
			"phone": map[string]any{
				"type":        "string",
				"description": "Customer's phone number",
			},
		},
		"required": []string{"customer_name", "date", "time", "service_type"},
	}
}

func (t *AppointmentBookingTool) Execute(_ context.Context, args map[string]any) (map[string]any, error) {
	customerName := stringArg(args, "customer_name")
	date := stringArg(args, "date")
	timeOfDay := stringArg(args, "time")
	serviceType := stringArg(args, "service_type")
	phone := stringArg(args, "phone")
	if phone == "" {
		phone = "Not provided"
	}

	if customerName == "" || date == "" || timeOfDay == "" || serviceType == "" {
		return map[string]any{
			"success": false,
			"message": "Missing required fields for appointment booking",
		}, nil
	}

	if _, err := time.Parse("2006-01-02", date); err != nil {
		return invalidFormatResult(), nil
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return invalidFormatResult(), nil
	}

	appointment := Appointment{
		AppointmentID: fmt.Sprintf("APT-%s", time.Now().Format("20060102150405")),
		CustomerName:  customerName,
		Date:          date,
		Time:          timeOfDay,
		ServiceType:   serviceType,
		Phone:         phone,
		Status:        "confirmed",
	}
	t.booked = append(t.booked, appointment)
	t.logger.Info("appointment booked", zap.Any("appointment", appointment))

	return map[string]any{
		"success":        true,
		"message":        fmt.Sprintf("Appointment successfully booked for %s on %s at %s", customerName, date, timeOfDay),
		"appointment_id": appointment.AppointmentID,
		"details":        appointment,
	}, nil
}

func invalidFormatResult() map[string]any {
	return map[string]any{
		"success": false,
		"message": "Invalid date or time format. Use YYYY-MM-DD for date and HH:MM for time.",
	}
}
