package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDeliveryEnvelope(t *testing.T) {
	event := NormalizedEvent{
		Kind:      EventKindAppMention,
		ChannelID: "C123",
		ThreadTS:  "1000.000100",
		MessageTS: "1000.000200",
		UserID:    "U456",
		Text:      "register PROJ-1",
	}

	t.Run("identical events share a dedup token", func(t *testing.T) {
		a := NewDeliveryEnvelope(event)
		b := NewDeliveryEnvelope(event)
		assert.Equal(t, a.DedupToken, b.DedupToken)
	})

	t.Run("any content change produces a new token", func(t *testing.T) {
		a := NewDeliveryEnvelope(event)

		changed := event
		changed.Text = "register PROJ-2"
		b := NewDeliveryEnvelope(changed)

		assert.NotEqual(t, a.DedupToken, b.DedupToken)
	})

	t.Run("group key follows the thread", func(t *testing.T) {
		envelope := NewDeliveryEnvelope(event)
		assert.Equal(t, "C123_1000.000100", envelope.GroupID)
	})

	t.Run("reaction events without a thread group on the message", func(t *testing.T) {
		reaction := NormalizedEvent{
			Kind:      EventKindReactionAdded,
			ChannelID: "C123",
			MessageTS: "1000.000300",
			UserID:    "U456",
			Reaction:  "speech_balloon",
		}
		envelope := NewDeliveryEnvelope(reaction)
		assert.Equal(t, "C123_1000.000300", envelope.GroupID)
	})

	t.Run("receive count starts at zero", func(t *testing.T) {
		envelope := NewDeliveryEnvelope(event)
		assert.Equal(t, 0, envelope.ReceiveCount)
		assert.False(t, envelope.EnqueuedAt.IsZero())
	})
}
