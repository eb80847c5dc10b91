package threadlinks

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"threadlink/core"
	"threadlink/db"
	"threadlink/models"
)

type ThreadLinksService struct {
	threadLinksRepo *db.PostgresThreadLinksRepository
}

func NewThreadLinksService(repo *db.PostgresThreadLinksRepository) *ThreadLinksService {
	return &ThreadLinksService{threadLinksRepo: repo}
}

func (s *ThreadLinksService) UpsertThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey, remoteLinkID string,
) (*models.ThreadLink, error) {
	log.Printf("📋 Starting to upsert thread link: %s -> %s", models.ThreadID(channelID, threadTS), ticketKey)

	if err := validateThreadKey(channelID, threadTS); err != nil {
		return nil, err
	}
	if ticketKey == "" {
		return nil, fmt.Errorf("ticket key cannot be empty")
	}

	dbLink := &db.DatabaseThreadLink{
		ID:           core.NewID("tl"),
		ChannelID:    channelID,
		ThreadTS:     threadTS,
		TicketKey:    ticketKey,
		RemoteLinkID: remoteLinkID,
	}

	if err := s.threadLinksRepo.UpsertThreadLink(ctx, dbLink); err != nil {
		return nil, fmt.Errorf("failed to upsert thread link: %w", err)
	}

	link := dbLink.ToThreadLink()
	log.Printf("📋 Completed successfully - upserted thread link with ID: %s", link.ID)
	return link, nil
}

func (s *ThreadLinksService) GetThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey string,
) (mo.Option[*models.ThreadLink], error) {
	if err := validateThreadKey(channelID, threadTS); err != nil {
		return mo.None[*models.ThreadLink](), err
	}
	if ticketKey == "" {
		return mo.None[*models.ThreadLink](), fmt.Errorf("ticket key cannot be empty")
	}

	maybeLink, err := s.threadLinksRepo.GetThreadLink(ctx, channelID, threadTS, ticketKey)
	if err != nil {
		return mo.None[*models.ThreadLink](), fmt.Errorf("failed to get thread link: %w", err)
	}
	if !maybeLink.IsPresent() {
		return mo.None[*models.ThreadLink](), nil
	}

	return mo.Some(maybeLink.MustGet().ToThreadLink()), nil
}

func (s *ThreadLinksService) DeleteThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey string,
) (bool, error) {
	log.Printf("📋 Starting to delete thread link: %s -> %s", models.ThreadID(channelID, threadTS), ticketKey)

	if err := validateThreadKey(channelID, threadTS); err != nil {
		return false, err
	}
	if ticketKey == "" {
		return false, fmt.Errorf("ticket key cannot be empty")
	}

	deleted, err := s.threadLinksRepo.DeleteThreadLink(ctx, channelID, threadTS, ticketKey)
	if err != nil {
		return false, fmt.Errorf("failed to delete thread link: %w", err)
	}

	log.Printf("📋 Completed successfully - deleted thread link: %t", deleted)
	return deleted, nil
}

func (s *ThreadLinksService) ListThreadLinksByThread(
	ctx context.Context,
	channelID, threadTS string,
) ([]*models.ThreadLink, error) {
	if err := validateThreadKey(channelID, threadTS); err != nil {
		return nil, err
	}

	dbLinks, err := s.threadLinksRepo.ListThreadLinksByThread(ctx, channelID, threadTS)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread links: %w", err)
	}

	links := make([]*models.ThreadLink, 0, len(dbLinks))
	for _, dbLink := range dbLinks {
		links = append(links, dbLink.ToThreadLink())
	}

	return links, nil
}

func validateThreadKey(channelID, threadTS string) error {
	if channelID == "" {
		return fmt.Errorf("channel ID cannot be empty")
	}
	if threadTS == "" {
		return fmt.Errorf("thread timestamp cannot be empty")
	}
	return nil
}
