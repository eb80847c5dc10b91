package slack

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"threadlink/clients"
)

type MockSlackClient struct {
	mock.Mock
}

func (m *MockSlackClient) AuthTest() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockSlackClient) AddReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	args := m.Called(ctx, name, item)
	return args.Error(0)
}

func (m *MockSlackClient) RemoveReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	args := m.Called(ctx, name, item)
	return args.Error(0)
}

func (m *MockSlackClient) GetReactions(
	ctx context.Context,
	item clients.SlackItemRef,
) ([]clients.SlackItemReaction, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clients.SlackItemReaction), args.Error(1)
}

func (m *MockSlackClient) GetPermalink(ctx context.Context, channelID, messageTS string) (string, error) {
	args := m.Called(ctx, channelID, messageTS)
	return args.String(0), args.Error(1)
}

func (m *MockSlackClient) GetChannelName(ctx context.Context, channelID string) (string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.Error(1)
}

func (m *MockSlackClient) GetMessageContent(
	ctx context.Context,
	channelID, messageTS string,
) (*clients.SlackMessageContent, error) {
	args := m.Called(ctx, channelID, messageTS)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.SlackMessageContent), args.Error(1)
}

func (m *MockSlackClient) DownloadFile(ctx context.Context, downloadURL string, w io.Writer) error {
	args := m.Called(ctx, downloadURL, w)
	return args.Error(0)
}
