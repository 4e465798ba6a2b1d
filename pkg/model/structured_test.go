package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no lang", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `Here you go: {"a":1} hope that helps`, `{"a":1}`},
		{"array", `[1,2,3]`, `[1,2,3]`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"no json at all", "sorry, cannot comply", "sorry, cannot comply"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSON(tc.in))
		})
	}
}

func TestAPIErrorFormatting(t *testing.T) {
	plain := &APIError{StatusCode: 500, Message: "upstream exploded"}
	assert.Equal(t, "HTTP 500: upstream exploded", plain.Error())

	typed := &APIError{StatusCode: 429, Message: "slow down", Type: "rate_limit", Code: "tokens"}
	assert.Contains(t, typed.Error(), "rate_limit")
	assert.True(t, typed.IsRateLimitError())
	assert.False(t, plain.IsRateLimitError())
}
