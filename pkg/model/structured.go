package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const structuredMaxAttempts = 3

// Structured asks the model for a JSON document and decodes it into T. Each
// retry lowers the temperature so repeated failures converge on a literal,
// parseable answer. The schema string is an example document or field list
// appended to the prompt.
func Structured[T any](ctx context.Context, c *Client, messages []Message, schema string) (*T, error) {
	prompt := fmt.Sprintf(
		"Respond with a single JSON object only, no prose and no code fences. It must match this shape:\n%s",
		schema,
	)
	augmented := append(append([]Message(nil), messages...), Message{
		Role:    RoleSystem,
		Content: prompt,
	})

	temperature := c.temperature
	var lastErr error
	for attempt := 0; attempt < structuredMaxAttempts; attempt++ {
		text, err := c.chat(ctx, augmented, temperature)
		if err != nil {
			return nil, err
		}

		var out T
		if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil {
			lastErr = fmt.Errorf("parsing structured response: %w", err)
			temperature *= 0.5
			continue
		}
		return &out, nil
	}
	return nil, fmt.Errorf("structured response failed after %d attempts: %w", structuredMaxAttempts, lastErr)
}

// extractJSON strips code fences and surrounding prose, returning the
// outermost JSON object or array in the text.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	closing := byte('}')
	if text[start] == '[' {
		closing = ']'
	}
	if end := strings.LastIndexByte(text, closing); end > start {
		return text[start : end+1]
	}
	return text[start:]
}
