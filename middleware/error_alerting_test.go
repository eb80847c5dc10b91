package middleware_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadlink/middleware"
	"threadlink/models"
	"threadlink/queue"
)

type recordingSink struct {
	mu        sync.Mutex
	envelopes []*models.DeliveryEnvelope
	reasons   []error
}

func (s *recordingSink) HandleDeadLetter(envelope *models.DeliveryEnvelope, reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes = append(s.envelopes, envelope)
	s.reasons = append(s.reasons, reason)
}

func testEnvelope() models.DeliveryEnvelope {
	return models.NewDeliveryEnvelope(models.NormalizedEvent{
		Kind:      models.EventKindAppMention,
		ChannelID: "C123",
		ThreadTS:  "1000.000100",
		MessageTS: "1000.000200",
		UserID:    "U456",
		Text:      "register PROJ-1",
	})
}

func TestWrapConsumer(t *testing.T) {
	alerts := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{})

	t.Run("passes results through", func(t *testing.T) {
		wrapped := alerts.WrapConsumer(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			return nil
		})
		envelope := testEnvelope()
		assert.NoError(t, wrapped(context.Background(), &envelope))

		failing := alerts.WrapConsumer(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			return fmt.Errorf("jira returned 503")
		})
		assert.EqualError(t, failing(context.Background(), &envelope), "jira returned 503")
	})

	t.Run("returns a recovered panic as an error", func(t *testing.T) {
		wrapped := alerts.WrapConsumer(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			panic("boom")
		})

		envelope := testEnvelope()
		err := wrapped(context.Background(), &envelope)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "consumer panicked")
	})

	t.Run("a panicking consumer still dead-letters through the queue", func(t *testing.T) {
		wrapped := alerts.WrapConsumer(func(ctx context.Context, envelope *models.DeliveryEnvelope) error {
			panic("boom")
		})

		sink := &recordingSink{}
		q := queue.New(queue.Config{DedupWindow: time.Minute, MaxReceiveCount: 1}, wrapped, sink)

		require.NoError(t, q.Enqueue(testEnvelope()))
		q.Stop()

		require.Len(t, sink.envelopes, 1)
		assert.Contains(t, sink.reasons[0].Error(), "consumer panicked")
	})
}
