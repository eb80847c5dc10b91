package threadlinks

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"threadlink/models"
)

type MockThreadLinksService struct {
	mock.Mock
}

func (m *MockThreadLinksService) UpsertThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey, remoteLinkID string,
) (*models.ThreadLink, error) {
	args := m.Called(ctx, channelID, threadTS, ticketKey, remoteLinkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ThreadLink), args.Error(1)
}

func (m *MockThreadLinksService) GetThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey string,
) (mo.Option[*models.ThreadLink], error) {
	args := m.Called(ctx, channelID, threadTS, ticketKey)
	if args.Get(0) == nil {
		return mo.None[*models.ThreadLink](), args.Error(1)
	}
	return args.Get(0).(mo.Option[*models.ThreadLink]), args.Error(1)
}

func (m *MockThreadLinksService) DeleteThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey string,
) (bool, error) {
	args := m.Called(ctx, channelID, threadTS, ticketKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockThreadLinksService) ListThreadLinksByThread(
	ctx context.Context,
	channelID, threadTS string,
) ([]*models.ThreadLink, error) {
	args := m.Called(ctx, channelID, threadTS)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ThreadLink), args.Error(1)
}
