package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// KnowledgeBaseTool answers questions from a small in-memory knowledge base.
// A real deployment would back this with a search index or database.
type KnowledgeBaseTool struct {
	entries map[string]string
}

func NewKnowledgeBaseTool() *KnowledgeBaseTool {
	return &KnowledgeBaseTool{
		entries: map[string]string{
			"business_hours": "Our business hours are Monday-Friday 9am-5pm EST",
			"return_policy":  "We offer a 30-day money-back guarantee on all products. Items must be in original condition.",
			"shipping":       "Standard shipping takes 5-7 business days. Express shipping is available for 2-3 day delivery.",
			"support":        "For technical support, email support@example.com or call 1-800-SUPPORT",
			"pricing":        "Our pricing varies by plan. Basic plan starts at $9.99/month, Professional at $29.99/month, and Enterprise is custom priced.",
			"contact":        "You can reach us at contact@example.com or call 1-800-CONTACT",
			"cancellation":   "You can cancel your subscription anytime from your account settings. No cancellation fees apply.",
			"warranty":       "All products come with a 1-year manufacturer warranty covering defects in materials and workmanship.",
		},
	}
}

func (t *KnowledgeBaseTool) Name() string {
	return "lookup_information"
}

func (t *KnowledgeBaseTool) Description() string {
	return "Looks up information from the company knowledge base. " +
		"Use this when the user asks about business hours, policies, pricing, shipping, " +
		"support, or other company information."
}

func (t *KnowledgeBaseTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{
				"type": "string",
				"description": "The topic to look up. Examples: business_hours, return_policy, " +
					"shipping, support, pricing, contact, cancellation, warranty",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Additional context or specific question about the topic",
			},
		},
		"required": []string{"topic"},
	}
}

func (t *KnowledgeBaseTool) Execute(_ context.Context, args map[string]any) (map[string]any, error) {
	topic := strings.ToLower(stringArg(args, "topic"))

	if info, ok := t.entries[topic]; ok {
		return map[string]any{
			"success":     true,
			"topic":       topic,
			"information": info,
			"message":     fmt.Sprintf("Found information about %s", topic),
		}, nil
	}

	// Fuzzy match: either side containing the other counts.
	for key, info := range t.entries {
		if topic != "" && (strings.Contains(key, topic) || strings.Contains(topic, key)) {
			return map[string]any{
				"success":     true,
				"topic":       key,
				"information": info,
				"message":     fmt.Sprintf("Found information about %s", key),
			}, nil
		}
	}

	topics := make([]string, 0, len(t.entries))
	for key := range t.entries {
		topics = append(topics, key)
	}
	sort.Strings(topics)
	return map[string]any{
		"success":          false,
		"message":          fmt.Sprintf("No information found for topic: %s", topic),
		"available_topics": strings.Join(topics, ", "),
	}, nil
}
