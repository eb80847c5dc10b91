package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"threadlink/models"
)

func TestSanitizeCommandText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips bot mention",
			input:    "<@U123ABC> register PROJ-1",
			expected: "register PROJ-1",
		},
		{
			name:     "strips mention with username",
			input:    "<@U123ABC|threadlink> register PROJ-1",
			expected: "register PROJ-1",
		},
		{
			name:     "labeled link keeps display text",
			input:    "<@U123> register PROJ-1 <https://example.com/runbook|runbook>",
			expected: "register PROJ-1 runbook",
		},
		{
			name:     "bare link keeps URL",
			input:    "<@U123> register PROJ-1 <https://example.com/runbook>",
			expected: "register PROJ-1 https://example.com/runbook",
		},
		{
			name:     "collapses whitespace",
			input:    "  <@U123>   register    PROJ-1  ",
			expected: "register PROJ-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeCommandText(tt.input))
		})
	}
}

func TestParseCommand(t *testing.T) {
	t.Run("register with ticket key", func(t *testing.T) {
		cmd := ParseCommand("<@UBOT> register PROJ-123")
		assert.Equal(t, models.CommandTypeRegister, cmd.Type)
		assert.Equal(t, []string{"PROJ-123"}, cmd.Args)
	})

	t.Run("register with link text", func(t *testing.T) {
		cmd := ParseCommand("<@UBOT> register PROJ-123 billing outage thread")
		assert.Equal(t, models.CommandTypeRegister, cmd.Type)
		assert.Equal(t, []string{"PROJ-123", "billing", "outage", "thread"}, cmd.Args)
	})

	t.Run("keyword is case insensitive", func(t *testing.T) {
		cmd := ParseCommand("<@UBOT> Register PROJ-123")
		assert.Equal(t, models.CommandTypeRegister, cmd.Type)
	})

	t.Run("deregister", func(t *testing.T) {
		cmd := ParseCommand("<@UBOT> deregister PROJ-123")
		assert.Equal(t, models.CommandTypeDeregister, cmd.Type)
		assert.Equal(t, []string{"PROJ-123"}, cmd.Args)
	})

	t.Run("plain chatter is a no-op", func(t *testing.T) {
		cmd := ParseCommand("<@UBOT> can you take a look at this?")
		assert.Equal(t, models.CommandTypeNoOp, cmd.Type)
	})

	t.Run("bare mention is a no-op", func(t *testing.T) {
		cmd := ParseCommand("<@UBOT>")
		assert.Equal(t, models.CommandTypeNoOp, cmd.Type)
	})
}

func TestIsValidTicketKey(t *testing.T) {
	assert.True(t, IsValidTicketKey("PROJ-1"))
	assert.True(t, IsValidTicketKey("AB2-1234"))
	assert.False(t, IsValidTicketKey("proj-1"))
	assert.False(t, IsValidTicketKey("PROJ-"))
	assert.False(t, IsValidTicketKey("-123"))
	assert.False(t, IsValidTicketKey("PROJ 1"))
	assert.False(t, IsValidTicketKey("1PROJ-1"))
}
