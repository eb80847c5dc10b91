package clients

import (
	"context"
	"io"
)

// SlackClient defines the chat collaborator surface the pipeline needs:
// reaction feedback, permalinks, message content and authed file downloads
type SlackClient interface {
	AuthTest() (botUserID string, err error)
	AddReaction(ctx context.Context, name string, item SlackItemRef) error
	RemoveReaction(ctx context.Context, name string, item SlackItemRef) error
	GetReactions(ctx context.Context, item SlackItemRef) ([]SlackItemReaction, error)
	GetPermalink(ctx context.Context, channelID, messageTS string) (string, error)
	GetChannelName(ctx context.Context, channelID string) (string, error)
	GetMessageContent(ctx context.Context, channelID, messageTS string) (*SlackMessageContent, error)
	DownloadFile(ctx context.Context, downloadURL string, w io.Writer) error
}

// JiraClient defines the ticket-tracker collaborator surface: remote links
// back to threads, comments and attachments. Implementations classify their
// failures: 4xx responses are wrapped terminal, everything else transient.
type JiraClient interface {
	AddRemoteLink(ctx context.Context, ticketKey, url, title string) (linkID string, err error)
	UpdateRemoteLink(ctx context.Context, ticketKey, linkID, url, title string) error
	RemoveRemoteLink(ctx context.Context, ticketKey, linkID string) error
	ValidateRemoteLink(ctx context.Context, ticketKey, linkID string) (bool, error)
	AddComment(ctx context.Context, ticketKey, body string) (commentID string, err error)
	AttachFile(ctx context.Context, ticketKey, filename string, r io.Reader) error
}

// SecretsProvider is a read-only fetch of named secrets by identifier
type SecretsProvider interface {
	GetSecret(ctx context.Context, secretID string) (string, error)
}
