package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadlink/models"
	"threadlink/queue"
	"threadlink/services/ingress"
)

const testSigningSecret = "test_signing_secret"

func signedRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write([]byte(baseString))

	req := httptest.NewRequest("POST", "/slack/events", strings.NewReader(body))
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func newTestHandler(consumer queue.Consumer) (*SlackEventsHandler, *queue.DeliveryQueue) {
	q := queue.New(queue.Config{DedupWindow: time.Minute, MaxReceiveCount: 1}, consumer, &queue.LogDeadLetterSink{})
	ingressService := ingress.NewIngressService(testSigningSecret, "speech_balloon", q)
	return NewSlackEventsHandler(ingressService), q
}

func TestHandleSlackEvent(t *testing.T) {
	t.Run("url verification echoes the challenge", func(t *testing.T) {
		handler, q := newTestHandler(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			return nil
		})
		defer q.Stop()

		rec := httptest.NewRecorder()
		handler.HandleSlackEvent(rec, signedRequest(t, `{"type":"url_verification","challenge":"test_challenge"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "test_challenge", rec.Body.String())
	})

	t.Run("bad signature is rejected before parsing", func(t *testing.T) {
		handler, q := newTestHandler(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			return nil
		})
		defer q.Stop()

		req := signedRequest(t, `{"type":"url_verification","challenge":"x"}`)
		req.Header.Set("X-Slack-Signature", "v0=forged")

		rec := httptest.NewRecorder()
		handler.HandleSlackEvent(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("app mention lands on the queue", func(t *testing.T) {
		delivered := make(chan *models.DeliveryEnvelope, 1)
		handler, q := newTestHandler(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			delivered <- envelope
			return nil
		})
		defer q.Stop()

		body := `{
			"type": "event_callback",
			"event": {
				"type": "app_mention",
				"channel": "C123",
				"ts": "1000.000200",
				"thread_ts": "1000.000100",
				"user": "U456",
				"text": "<@UBOT> register PROJ-1"
			}
		}`

		rec := httptest.NewRecorder()
		handler.HandleSlackEvent(rec, signedRequest(t, body))
		require.Equal(t, http.StatusOK, rec.Code)

		select {
		case envelope := <-delivered:
			assert.Equal(t, models.EventKindAppMention, envelope.Event.Kind)
			assert.Equal(t, "C123_1000.000100", envelope.GroupID)
		case <-time.After(2 * time.Second):
			t.Fatal("event never reached the consumer")
		}
	})

	t.Run("unsupported events are acknowledged and dropped", func(t *testing.T) {
		handler, q := newTestHandler(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			t.Error("unsupported event must not be enqueued")
			return nil
		})
		defer q.Stop()

		body := `{
			"type": "event_callback",
			"event": {"type": "message", "channel": "C123", "ts": "1000.000200"}
		}`

		rec := httptest.NewRecorder()
		handler.HandleSlackEvent(rec, signedRequest(t, body))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non event callbacks are acknowledged", func(t *testing.T) {
		handler, q := newTestHandler(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			return nil
		})
		defer q.Stop()

		rec := httptest.NewRecorder()
		handler.HandleSlackEvent(rec, signedRequest(t, `{"type":"app_rate_limited"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
