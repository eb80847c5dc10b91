package ingress

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadlink/models"
)

func signBody(secret, timestamp, body string) string {
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(baseString))
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	signingSecret := "test_signing_secret"
	service := NewIngressService(signingSecret, "speech_balloon", nil)

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	body := `{"type":"url_verification","challenge":"test_challenge"}`
	signature := signBody(signingSecret, timestamp, body)

	t.Run("valid signature passes", func(t *testing.T) {
		err := service.VerifySignature(timestamp, signature, []byte(body))
		assert.NoError(t, err)
	})

	t.Run("tampered body fails", func(t *testing.T) {
		err := service.VerifySignature(timestamp, signature, []byte(body+" "))
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		badSignature := signBody("other_secret", timestamp, body)
		err := service.VerifySignature(timestamp, badSignature, []byte(body))
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("missing headers fail", func(t *testing.T) {
		err := service.VerifySignature("", signature, []byte(body))
		assert.ErrorIs(t, err, ErrBadSignature)

		err = service.VerifySignature(timestamp, "", []byte(body))
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("old timestamp fails", func(t *testing.T) {
		oldTimestamp := strconv.FormatInt(time.Now().Unix()-400, 10) // 6+ minutes ago
		oldSignature := signBody(signingSecret, oldTimestamp, body)
		err := service.VerifySignature(oldTimestamp, oldSignature, []byte(body))
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("future timestamp fails", func(t *testing.T) {
		futureTimestamp := strconv.FormatInt(time.Now().Unix()+400, 10)
		futureSignature := signBody(signingSecret, futureTimestamp, body)
		err := service.VerifySignature(futureTimestamp, futureSignature, []byte(body))
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("garbage timestamp fails", func(t *testing.T) {
		badSignature := signBody(signingSecret, "not-a-number", body)
		err := service.VerifySignature("not-a-number", badSignature, []byte(body))
		assert.ErrorIs(t, err, ErrBadSignature)
	})
}

func TestNormalizeEvent_AppMention(t *testing.T) {
	service := NewIngressService("secret", "speech_balloon", nil)

	t.Run("threaded mention normalizes", func(t *testing.T) {
		event, err := service.NormalizeEvent(map[string]any{
			"type":      "app_mention",
			"channel":   "C123",
			"ts":        "1717171717.000200",
			"thread_ts": "1717171717.000100",
			"user":      "U456",
			"text":      "<@UBOT> register PROJ-1",
		})
		require.NoError(t, err)

		assert.Equal(t, models.EventKindAppMention, event.Kind)
		assert.Equal(t, "C123", event.ChannelID)
		assert.Equal(t, "1717171717.000100", event.ThreadTS)
		assert.Equal(t, "1717171717.000200", event.MessageTS)
		assert.Equal(t, "U456", event.UserID)
		assert.Equal(t, "<@UBOT> register PROJ-1", event.Text)
		assert.Equal(t, "C123_1717171717.000100", event.GroupKey())
	})

	t.Run("mention outside a thread is unsupported", func(t *testing.T) {
		_, err := service.NormalizeEvent(map[string]any{
			"type":    "app_mention",
			"channel": "C123",
			"ts":      "1717171717.000100",
			"user":    "U456",
			"text":    "<@UBOT> register PROJ-1",
		})
		assert.ErrorIs(t, err, ErrUnsupportedEvent)
	})

	t.Run("mention missing channel is unsupported", func(t *testing.T) {
		_, err := service.NormalizeEvent(map[string]any{
			"type":      "app_mention",
			"ts":        "1717171717.000200",
			"thread_ts": "1717171717.000100",
		})
		assert.ErrorIs(t, err, ErrUnsupportedEvent)
	})

	t.Run("files carry over", func(t *testing.T) {
		event, err := service.NormalizeEvent(map[string]any{
			"type":      "app_mention",
			"channel":   "C123",
			"ts":        "1717171717.000200",
			"thread_ts": "1717171717.000100",
			"user":      "U456",
			"text":      "<@UBOT> register PROJ-1",
			"files": []any{
				map[string]any{"name": "report.pdf", "url_private_download": "https://files.slack.com/report.pdf"},
				map[string]any{"name": "no_url.txt"},
			},
		})
		require.NoError(t, err)
		require.Len(t, event.Files, 1)
		assert.Equal(t, "report.pdf", event.Files[0].Name)
	})
}

func TestNormalizeEvent_ReactionAdded(t *testing.T) {
	service := NewIngressService("secret", "speech_balloon", nil)

	t.Run("sync reaction normalizes", func(t *testing.T) {
		event, err := service.NormalizeEvent(map[string]any{
			"type":     "reaction_added",
			"reaction": "speech_balloon",
			"user":     "U456",
			"item": map[string]any{
				"type":    "message",
				"channel": "C123",
				"ts":      "1717171717.000300",
			},
		})
		require.NoError(t, err)

		assert.Equal(t, models.EventKindReactionAdded, event.Kind)
		assert.Equal(t, "C123", event.ChannelID)
		assert.Equal(t, "1717171717.000300", event.MessageTS)
		assert.Empty(t, event.ThreadTS)
		// Without a thread root the partition key falls back to the message
		assert.Equal(t, "C123_1717171717.000300", event.GroupKey())
	})

	t.Run("other reactions are unsupported", func(t *testing.T) {
		_, err := service.NormalizeEvent(map[string]any{
			"type":     "reaction_added",
			"reaction": "thumbsup",
			"user":     "U456",
			"item": map[string]any{
				"type":    "message",
				"channel": "C123",
				"ts":      "1717171717.000300",
			},
		})
		assert.ErrorIs(t, err, ErrUnsupportedEvent)
	})

	t.Run("reaction on non-message item is unsupported", func(t *testing.T) {
		_, err := service.NormalizeEvent(map[string]any{
			"type":     "reaction_added",
			"reaction": "speech_balloon",
			"user":     "U456",
			"item": map[string]any{
				"type": "file",
			},
		})
		assert.ErrorIs(t, err, ErrUnsupportedEvent)
	})
}

func TestNormalizeEvent_UnknownType(t *testing.T) {
	service := NewIngressService("secret", "speech_balloon", nil)

	_, err := service.NormalizeEvent(map[string]any{"type": "message"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEvent))
}
