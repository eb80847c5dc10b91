package services

import (
	"context"

	"github.com/samber/mo"

	"threadlink/models"
)

// ThreadLinksService defines the interface for the thread-to-ticket
// relationship store. All mutations are keyed upserts/deletes on the
// compound key (channel, thread root timestamp, ticket key).
type ThreadLinksService interface {
	UpsertThreadLink(
		ctx context.Context,
		channelID, threadTS, ticketKey, remoteLinkID string,
	) (*models.ThreadLink, error)
	GetThreadLink(
		ctx context.Context,
		channelID, threadTS, ticketKey string,
	) (mo.Option[*models.ThreadLink], error)
	DeleteThreadLink(ctx context.Context, channelID, threadTS, ticketKey string) (bool, error)
	ListThreadLinksByThread(ctx context.Context, channelID, threadTS string) ([]*models.ThreadLink, error)
}
