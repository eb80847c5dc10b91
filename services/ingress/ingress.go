// Package ingress authenticates inbound Slack webhooks and turns them into
// normalized events on the delivery queue. It performs no side effects
// against Slack or Jira, so upstream webhook redeliveries are cheap and
// safe to repeat.
package ingress

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"threadlink/models"
	"threadlink/queue"
)

// Verification failures. Requests failing either check are rejected at the
// boundary and never reach the queue.
var (
	ErrBadSignature     = errors.New("bad signature")
	ErrUnsupportedEvent = errors.New("unsupported event")
)

// clock skew tolerance for the request timestamp (replay protection)
const timestampTolerance = 5 * time.Minute

type IngressService struct {
	signingSecret string
	syncReaction  string
	deliveryQueue *queue.DeliveryQueue
}

func NewIngressService(signingSecret, syncReaction string, deliveryQueue *queue.DeliveryQueue) *IngressService {
	return &IngressService{
		signingSecret: signingSecret,
		syncReaction:  syncReaction,
		deliveryQueue: deliveryQueue,
	}
}

// VerifySignature checks the authenticity of a Slack webhook request: the
// HMAC-SHA256 of "v0:timestamp:body" under the signing secret must match
// the supplied signature, and the timestamp must be fresh.
func (s *IngressService) VerifySignature(timestamp, signature string, body []byte) error {
	if timestamp == "" || signature == "" {
		return fmt.Errorf("%w: missing required headers", ErrBadSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp format", ErrBadSignature)
	}

	skew := time.Since(time.Unix(ts, 0))
	if skew > timestampTolerance || skew < -timestampTolerance {
		return fmt.Errorf("%w: request timestamp outside tolerance", ErrBadSignature)
	}

	baseString := fmt.Sprintf("v0:%s:%s", timestamp, string(body))

	mac := hmac.New(sha256.New, []byte(s.signingSecret))
	mac.Write([]byte(baseString))
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return fmt.Errorf("%w: signature mismatch", ErrBadSignature)
	}

	return nil
}

// NormalizeEvent converts a verified Slack event payload into the canonical
// internal representation. Payloads whose kind is not app_mention or
// reaction_added, or whose thread identity cannot be resolved, are
// rejected with ErrUnsupportedEvent.
func (s *IngressService) NormalizeEvent(event map[string]any) (*models.NormalizedEvent, error) {
	eventType, _ := event["type"].(string)

	switch models.EventKind(eventType) {
	case models.EventKindAppMention:
		return normalizeAppMention(event)
	case models.EventKindReactionAdded:
		return s.normalizeReactionAdded(event)
	default:
		return nil, fmt.Errorf("%w: event type %q", ErrUnsupportedEvent, eventType)
	}
}

// Accept wraps the normalized event in a delivery envelope and performs the
// single enqueue call. An enqueue failure is retryable: the webhook boundary
// answers non-2xx and the chat platform redelivers.
func (s *IngressService) Accept(event *models.NormalizedEvent) error {
	envelope := models.NewDeliveryEnvelope(*event)

	log.Printf("📨 Enqueueing %s event for group %s (token: %.12s...)",
		event.Kind, envelope.GroupID, envelope.DedupToken)

	if err := s.deliveryQueue.Enqueue(envelope); err != nil {
		return fmt.Errorf("failed to enqueue event: %w", err)
	}

	return nil
}

func normalizeAppMention(event map[string]any) (*models.NormalizedEvent, error) {
	channel, _ := event["channel"].(string)
	messageTS, _ := event["ts"].(string)
	threadTS, _ := event["thread_ts"].(string)
	user, _ := event["user"].(string)
	text, _ := event["text"].(string)

	if channel == "" || messageTS == "" {
		return nil, fmt.Errorf("%w: app mention missing channel or ts", ErrUnsupportedEvent)
	}
	// Commands only make sense inside a thread: the thread root is the
	// identity every relationship hangs off.
	if threadTS == "" {
		return nil, fmt.Errorf("%w: app mention outside a thread", ErrUnsupportedEvent)
	}

	return &models.NormalizedEvent{
		Kind:      models.EventKindAppMention,
		ChannelID: channel,
		ThreadTS:  threadTS,
		MessageTS: messageTS,
		UserID:    user,
		Text:      text,
		Files:     normalizeFiles(event),
	}, nil
}

func (s *IngressService) normalizeReactionAdded(event map[string]any) (*models.NormalizedEvent, error) {
	reaction, _ := event["reaction"].(string)
	user, _ := event["user"].(string)

	if reaction != s.syncReaction {
		return nil, fmt.Errorf("%w: reaction %q is not the sync trigger", ErrUnsupportedEvent, reaction)
	}

	item, _ := event["item"].(map[string]any)
	itemType, _ := item["type"].(string)
	if itemType != "message" {
		return nil, fmt.Errorf("%w: reaction on non-message item %q", ErrUnsupportedEvent, itemType)
	}

	channel, _ := item["channel"].(string)
	messageTS, _ := item["ts"].(string)
	if channel == "" || messageTS == "" {
		return nil, fmt.Errorf("%w: reaction item missing channel or ts", ErrUnsupportedEvent)
	}

	// The thread root is unknown here; the sync handler resolves it from
	// the reacted message before touching the store.
	return &models.NormalizedEvent{
		Kind:      models.EventKindReactionAdded,
		ChannelID: channel,
		MessageTS: messageTS,
		UserID:    user,
		Reaction:  reaction,
	}, nil
}

func normalizeFiles(event map[string]any) []models.SlackFile {
	rawFiles, _ := event["files"].([]any)
	var files []models.SlackFile
	for _, rawFile := range rawFiles {
		file, _ := rawFile.(map[string]any)
		name, _ := file["name"].(string)
		downloadURL, _ := file["url_private_download"].(string)
		if name == "" || downloadURL == "" {
			continue
		}
		files = append(files, models.SlackFile{Name: name, DownloadURL: downloadURL})
	}
	return files
}
