package processor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"threadlink/core"
	"threadlink/models"
	"threadlink/utils"
)

// handleRegister links the current thread to a ticket. The remote link on
// the ticket and the stored record are both upserted, so re-registering an
// existing pair refreshes the link instead of duplicating it.
func (u *ProcessorUseCase) handleRegister(ctx context.Context, event *models.NormalizedEvent, command models.Command) error {
	if len(command.Args) == 0 {
		return core.Terminalf("register requires a ticket key")
	}

	ticketKey := strings.ToUpper(command.Args[0])
	if !utils.IsValidTicketKey(ticketKey) {
		return core.Terminalf("%q is not a valid ticket key", command.Args[0])
	}

	// Any words after the key become the link's display text.
	linkText := strings.Join(command.Args[1:], " ")

	threadID := models.ThreadID(event.ChannelID, event.ThreadTS)
	log.Printf("📋 Registering thread %s to ticket %s", threadID, ticketKey)

	permalink, err := u.slackClient.GetPermalink(ctx, event.ChannelID, event.ThreadTS)
	if err != nil {
		return fmt.Errorf("failed to get thread permalink: %w", err)
	}

	title, err := u.linkTitle(ctx, event, linkText)
	if err != nil {
		return err
	}

	linkID, err := u.ensureRemoteLink(ctx, event, ticketKey, permalink, title)
	if err != nil {
		return err
	}

	if _, err := u.threadLinksService.UpsertThreadLink(ctx, event.ChannelID, event.ThreadTS, ticketKey, linkID); err != nil {
		return fmt.Errorf("failed to store thread link: %w", err)
	}

	log.Printf("✅ Thread %s registered to ticket %s (remote link %s)", threadID, ticketKey, linkID)
	return nil
}

// linkTitle builds the remote link title shown on the ticket, e.g.
// "threadlink: #support 1717171717.000100" or the custom text if given.
func (u *ProcessorUseCase) linkTitle(ctx context.Context, event *models.NormalizedEvent, linkText string) (string, error) {
	channelName, err := u.slackClient.GetChannelName(ctx, event.ChannelID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve channel name: %w", err)
	}

	label := linkText
	if label == "" {
		label = event.ThreadTS
	}
	return fmt.Sprintf("%s: #%s %s", u.config.AppName, channelName, label), nil
}

// ensureRemoteLink creates or refreshes the remote link on the ticket. When
// a record exists and its link is still present on the ticket, the link is
// updated in place; a stale or missing link gets recreated.
func (u *ProcessorUseCase) ensureRemoteLink(
	ctx context.Context,
	event *models.NormalizedEvent,
	ticketKey, permalink, title string,
) (string, error) {
	maybeLink, err := u.threadLinksService.GetThreadLink(ctx, event.ChannelID, event.ThreadTS, ticketKey)
	if err != nil {
		return "", fmt.Errorf("failed to look up existing thread link: %w", err)
	}

	if maybeLink.IsPresent() {
		existing := maybeLink.MustGet()
		valid, err := u.jiraClient.ValidateRemoteLink(ctx, ticketKey, existing.RemoteLinkID)
		if err != nil {
			return "", err
		}
		if valid {
			log.Printf("📋 Remote link %s still present on %s, updating in place", existing.RemoteLinkID, ticketKey)
			if err := u.jiraClient.UpdateRemoteLink(ctx, ticketKey, existing.RemoteLinkID, permalink, title); err != nil {
				return "", err
			}
			return existing.RemoteLinkID, nil
		}
		log.Printf("📋 Remote link %s no longer on %s, recreating", existing.RemoteLinkID, ticketKey)
	}

	return u.jiraClient.AddRemoteLink(ctx, ticketKey, permalink, title)
}
