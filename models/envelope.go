package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// DeliveryEnvelope is the unit traveling the delivery queue: the normalized
// event plus its partition key and deduplication token.
type DeliveryEnvelope struct {
	Event        NormalizedEvent `json:"event"`
	GroupID      string          `json:"group_id"`
	DedupToken   string          `json:"dedup_token"`
	ReceiveCount int             `json:"receive_count"`
	EnqueuedAt   time.Time       `json:"enqueued_at"`
}

// NewDeliveryEnvelope wraps a normalized event for enqueueing. The dedup
// token is a content hash of the canonical payload, so redeliveries of an
// identical webhook collapse into a single enqueued envelope within the
// dedup window.
func NewDeliveryEnvelope(event NormalizedEvent) DeliveryEnvelope {
	payload, _ := json.Marshal(event)
	sum := sha256.Sum256(payload)

	return DeliveryEnvelope{
		Event:      event,
		GroupID:    event.GroupKey(),
		DedupToken: hex.EncodeToString(sum[:]),
		EnqueuedAt: time.Now().UTC(),
	}
}
