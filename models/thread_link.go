package models

import "time"

// ThreadLink records that a Slack thread is registered to a Jira issue.
// The relationship is many-to-many: a thread may link to several issues and
// an issue may be linked from several threads. The compound key
// (ChannelID, ThreadTS, TicketKey) is unique, enforced by the store.
type ThreadLink struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	ThreadTS     string    `json:"thread_ts"`
	TicketKey    string    `json:"ticket_key"`
	RemoteLinkID string    `json:"remote_link_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ThreadID builds the stable compound identifier of a conversation thread
func ThreadID(channelID, threadTS string) string {
	return channelID + "_" + threadTS
}

// ThreadID returns the thread identifier this link belongs to
func (l *ThreadLink) ThreadID() string {
	return ThreadID(l.ChannelID, l.ThreadTS)
}
