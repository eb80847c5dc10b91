package slack

import (
	"context"
	"fmt"
	"io"

	"github.com/slack-go/slack"

	"threadlink/clients"
	"threadlink/models"
)

// SlackClient implements the clients.SlackClient interface using the slack-go/slack SDK
type SlackClient struct {
	*slack.Client
}

// NewSlackClient creates a new Slack client with the provided auth token
func NewSlackClient(authToken string) clients.SlackClient {
	return &SlackClient{
		Client: slack.New(authToken),
	}
}

// AuthTest verifies the bot token and returns the bot's own user ID
func (c *SlackClient) AuthTest() (string, error) {
	response, err := c.Client.AuthTest()
	if err != nil {
		return "", err
	}
	return response.UserID, nil
}

// AddReaction adds a reaction to a message
func (c *SlackClient) AddReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	return c.Client.AddReactionContext(ctx, name, slack.ItemRef{
		Channel:   item.Channel,
		Timestamp: item.Timestamp,
	})
}

// RemoveReaction removes a reaction from a message
func (c *SlackClient) RemoveReaction(ctx context.Context, name string, item clients.SlackItemRef) error {
	return c.Client.RemoveReactionContext(ctx, name, slack.ItemRef{
		Channel:   item.Channel,
		Timestamp: item.Timestamp,
	})
}

// GetReactions gets the reactions on a message
func (c *SlackClient) GetReactions(ctx context.Context, item clients.SlackItemRef) ([]clients.SlackItemReaction, error) {
	sdkItem := slack.ItemRef{
		Channel:   item.Channel,
		Timestamp: item.Timestamp,
	}

	reactions, err := c.Client.GetReactionsContext(ctx, sdkItem, slack.GetReactionsParameters{})
	if err != nil {
		return nil, err
	}

	var customReactions []clients.SlackItemReaction
	for _, reaction := range reactions {
		customReactions = append(customReactions, clients.SlackItemReaction{
			Name:  reaction.Name,
			Users: reaction.Users,
		})
	}

	return customReactions, nil
}

// GetPermalink gets a permalink URL for a message
func (c *SlackClient) GetPermalink(ctx context.Context, channelID, messageTS string) (string, error) {
	return c.Client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channelID,
		Ts:      messageTS,
	})
}

// GetChannelName resolves a channel ID to its human-readable name
func (c *SlackClient) GetChannelName(ctx context.Context, channelID string) (string, error) {
	channel, err := c.Client.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return "", err
	}
	return channel.Name, nil
}

// GetMessageContent fetches a single message's text, thread root and file
// attachments via conversations.replies, which works for both thread roots
// and replies
func (c *SlackClient) GetMessageContent(
	ctx context.Context,
	channelID, messageTS string,
) (*clients.SlackMessageContent, error) {
	messages, _, _, err := c.Client.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: messageTS,
		Limit:     1,
		Inclusive: true,
	})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("message %s not found in channel %s", messageTS, channelID)
	}

	message := messages[0]
	content := &clients.SlackMessageContent{
		Text:     message.Text,
		ThreadTS: message.ThreadTimestamp,
	}
	for _, file := range message.Files {
		content.Files = append(content.Files, models.SlackFile{
			Name:        file.Name,
			DownloadURL: file.URLPrivateDownload,
		})
	}

	return content, nil
}

// DownloadFile streams an authed Slack file download into w
func (c *SlackClient) DownloadFile(ctx context.Context, downloadURL string, w io.Writer) error {
	return c.Client.GetFileContext(ctx, downloadURL, w)
}
