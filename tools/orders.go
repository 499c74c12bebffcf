package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type mockOrder struct {
	orderID           string
	status            string
	items             []string
	total             string
	trackingNumber    string
	estimatedDelivery string
}

// OrderStatusTool checks order status against a mock order book.
type OrderStatusTool struct {
	orders map[string]mockOrder
}

func NewOrderStatusTool() *OrderStatusTool {
	return &OrderStatusTool{
		orders: map[string]mockOrder{
			"ORD-12345": {
				orderID:           "ORD-12345",
				status:            "shipped",
				items:             []string{"Product A", "Product B"},
				total:             "$149.99",
				trackingNumber:    "1Z999AA10123456784",
				estimatedDelivery: time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
			},
			"ORD-67890": {
				orderID:           "ORD-67890",
				status:            "processing",
				items:             []string{"Product C"},
				total:             "$79.99",
				estimatedDelivery: time.Now().AddDate(0, 0, 5).Format("2006-01-02"),
			},
		},
	}
}

func (t *OrderStatusTool) Name() string {
	return "check_order_status"
}

func (t *OrderStatusTool) Description() string {
	return "Checks the status of a customer's order. " +
		"Use this when the user wants to know about their order status, tracking, or delivery information."
}

func (t *OrderStatusTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"order_id": map[string]any{
				"type":        "string",
				"description": "The order ID or order number (e.g., ORD-12345)",
			},
			"email": map[string]any{
				"type":        "string",
				"description": "Customer's email address associated with the order (for verification)",
			},
		},
		"required": []string{"order_id"},
	}
}

func (t *OrderStatusTool) Execute(_ context.Context, args map[string]any) (map[string]any, error) {
	orderID := strings.ToUpper(stringArg(args, "order_id"))

	order, ok := t.orders[orderID]
	if !ok {
		return map[string]any{
			"success":    false,
			"message":    fmt.Sprintf("Order %s not found. Please verify the order number is correct.", orderID),
			"suggestion": "Try checking your order confirmation email for the correct order number.",
		}, nil
	}

	result := map[string]any{
		"success":            true,
		"order_id":           order.orderID,
		"status":             order.status,
		"items":              order.items,
		"total":              order.total,
		"estimated_delivery": order.estimatedDelivery,
	}
	if order.trackingNumber != "" {
		result["tracking_number"] = order.trackingNumber
		result["message"] = fmt.Sprintf("Order %s is %s. Tracking number: %s", orderID, order.status, order.trackingNumber)
	} else {
		result["message"] = fmt.Sprintf("Order %s is %s. No tracking number yet.", orderID, order.status)
	}
	return result, nil
}
