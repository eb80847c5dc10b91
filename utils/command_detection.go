package utils

import (
	"regexp"
	"strings"

	"threadlink/models"
)

var (
	// Slack mentions: <@USER_ID> or <@USER_ID|username>
	mentionRegex = regexp.MustCompile(`<@[^>|]+(?:\|[^>]+)?>`)
	// Slack links with display text: <https://...|text> -> text
	labeledLinkRegex = regexp.MustCompile(`<https?://[^>|]+?\|([^>]+)>`)
	// Bare Slack links: <https://...> -> https://...
	bareLinkRegex = regexp.MustCompile(`<(https?://[^>]+)>`)

	ticketKeyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]*-[0-9]+$`)
)

// SanitizeCommandText strips Slack markup from a mention so that
// "<@U123> register PROJ-123" becomes "register PROJ-123". Links keep their
// display text (or the raw URL when there is none).
func SanitizeCommandText(text string) string {
	text = mentionRegex.ReplaceAllString(text, "")
	text = labeledLinkRegex.ReplaceAllString(text, "$1")
	text = bareLinkRegex.ReplaceAllString(text, "$1")
	return strings.Join(strings.Fields(text), " ")
}

// ParseCommand extracts the intent from an app mention's text. The first
// word after sanitization selects the command; everything else is passed
// through as arguments for the handler to validate. Text that does not
// start with a known command keyword is a no-op, since not every mention
// of the bot is a command.
func ParseCommand(messageText string) models.Command {
	text := SanitizeCommandText(messageText)
	if text == "" {
		return models.Command{Type: models.CommandTypeNoOp}
	}

	fields := strings.Fields(text)
	keyword := strings.ToLower(fields[0])
	args := fields[1:]

	switch keyword {
	case "register":
		return models.Command{Type: models.CommandTypeRegister, Args: args}
	case "deregister":
		return models.Command{Type: models.CommandTypeDeregister, Args: args}
	default:
		return models.Command{Type: models.CommandTypeNoOp}
	}
}

// IsValidTicketKey reports whether key looks like a Jira issue key
// (e.g. "PROJ-123")
func IsValidTicketKey(key string) bool {
	return ticketKeyRegex.MatchString(key)
}
