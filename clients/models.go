package clients

import "threadlink/models"

// SlackItemRef identifies a message that can be reacted to
type SlackItemRef struct {
	Channel   string
	Timestamp string
}

// SlackItemReaction is one emoji reaction on a message with the users who added it
type SlackItemReaction struct {
	Name  string
	Users []string
}

// SlackMessageContent is the text, thread root and attachments of a single message
type SlackMessageContent struct {
	Text     string
	ThreadTS string
	Files    []models.SlackFile
}
