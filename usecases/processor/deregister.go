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

// handleDeregister unlinks the current thread from a ticket: the remote
// link comes off the ticket first, then the stored record is deleted. A
// terminal removal failure (link already gone, ticket deleted) is tolerated
// so the record never outlives the relationship.
func (u *ProcessorUseCase) handleDeregister(ctx context.Context, event *models.NormalizedEvent, command models.Command) error {
	if len(command.Args) != 1 {
		return core.Terminalf("deregister requires exactly one ticket key")
	}

	ticketKey := strings.ToUpper(command.Args[0])
	if !utils.IsValidTicketKey(ticketKey) {
		return core.Terminalf("%q is not a valid ticket key", command.Args[0])
	}

	threadID := models.ThreadID(event.ChannelID, event.ThreadTS)
	log.Printf("📋 Deregistering thread %s from ticket %s", threadID, ticketKey)

	maybeLink, err := u.threadLinksService.GetThreadLink(ctx, event.ChannelID, event.ThreadTS, ticketKey)
	if err != nil {
		return fmt.Errorf("failed to look up thread link: %w", err)
	}
	if !maybeLink.IsPresent() {
		return core.Terminalf("thread %s is not registered to ticket %s: %w", threadID, ticketKey, core.ErrNotFound)
	}

	link := maybeLink.MustGet()
	if err := u.jiraClient.RemoveRemoteLink(ctx, ticketKey, link.RemoteLinkID); err != nil {
		if !core.IsTerminal(err) {
			return err
		}
		// The link is already gone on the ticket side; still drop the record.
		log.Printf("⚠️ Remote link %s could not be removed from %s: %v", link.RemoteLinkID, ticketKey, err)
	}

	deleted, err := u.threadLinksService.DeleteThreadLink(ctx, event.ChannelID, event.ThreadTS, ticketKey)
	if err != nil {
		return fmt.Errorf("failed to delete thread link: %w", err)
	}
	if !deleted {
		return core.Terminalf("thread %s is not registered to ticket %s: %w", threadID, ticketKey, core.ErrNotFound)
	}

	log.Printf("✅ Thread %s deregistered from ticket %s", threadID, ticketKey)
	return nil
}
