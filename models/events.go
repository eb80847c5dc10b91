package models

// EventKind identifies the type of Slack event flowing through the pipeline
type EventKind string

const (
	EventKindAppMention    EventKind = "app_mention"
	EventKindReactionAdded EventKind = "reaction_added"
)

// SlackFile is a reference to a file attached to a Slack message
type SlackFile struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// NormalizedEvent is the verified, canonical form of an inbound Slack event.
// It is created once by the ingress verifier and never mutated afterwards.
//
// The pair (ChannelID, ThreadTS) is the sole globally unique handle to a
// conversation thread. Reaction events may arrive without a ThreadTS; the
// sync handler resolves the thread root from the reacted message.
type NormalizedEvent struct {
	Kind      EventKind   `json:"kind"`
	ChannelID string      `json:"channel_id"`
	ThreadTS  string      `json:"thread_ts,omitempty"`
	MessageTS string      `json:"message_ts"`
	UserID    string      `json:"user_id"`
	Text      string      `json:"text,omitempty"`
	Reaction  string      `json:"reaction,omitempty"`
	Files     []SlackFile `json:"files,omitempty"`
}

// GroupKey returns the FIFO partition key for the event. All events for one
// thread share a key and are processed in arrival order relative to each
// other; events for different threads may be processed concurrently.
func (e *NormalizedEvent) GroupKey() string {
	ts := e.ThreadTS
	if ts == "" {
		ts = e.MessageTS
	}
	return ThreadID(e.ChannelID, ts)
}
