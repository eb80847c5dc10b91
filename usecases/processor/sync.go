package processor

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"threadlink/core"
	"threadlink/models"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// handleSync copies the reacted message into every ticket the thread is
// registered to: its files become attachments and its text a comment with
// a permalink back to the source. Each ticket is synced independently so
// one failing ticket cannot block the others.
func (u *ProcessorUseCase) handleSync(ctx context.Context, event *models.NormalizedEvent) error {
	content, err := u.slackClient.GetMessageContent(ctx, event.ChannelID, event.MessageTS)
	if err != nil {
		return fmt.Errorf("failed to fetch reacted message: %w", err)
	}

	threadTS := content.ThreadTS
	if threadTS == "" {
		return core.Terminalf("message %s/%s is not part of a thread", event.ChannelID, event.MessageTS)
	}

	links, err := u.threadLinksService.ListThreadLinksByThread(ctx, event.ChannelID, threadTS)
	if err != nil {
		return fmt.Errorf("failed to list thread links: %w", err)
	}
	if len(links) == 0 {
		return core.Terminalf("thread %s is not registered to any ticket: %w",
			models.ThreadID(event.ChannelID, threadTS), core.ErrNotFound)
	}

	permalink, err := u.slackClient.GetPermalink(ctx, event.ChannelID, event.MessageTS)
	if err != nil {
		return fmt.Errorf("failed to get message permalink: %w", err)
	}

	attachments, err := u.downloadFiles(ctx, event, content.Files)
	if err != nil {
		return err
	}

	body := u.commentBody(permalink, content.Text, attachments)

	var failedKeys []string
	for _, link := range links {
		if err := u.syncToTicket(ctx, link.TicketKey, body, attachments); err != nil {
			log.Printf("❌ Failed to sync message to %s: %v", link.TicketKey, err)
			if core.IsTransient(err) {
				return err
			}
			failedKeys = append(failedKeys, link.TicketKey)
			continue
		}
		log.Printf("✅ Synced message %s/%s to %s", event.ChannelID, event.MessageTS, link.TicketKey)
	}

	if len(failedKeys) > 0 {
		return core.Terminalf("failed to sync message to: %s", strings.Join(failedKeys, ", "))
	}
	return nil
}

type attachment struct {
	// name as uploaded to the ticket, unique across repeated syncs
	name    string
	isImage bool
	data    []byte
}

// downloadFiles pulls each file off Slack once and renames it so repeated
// syncs of the same thread never collide on the ticket, e.g.
// "report-0-C123-1717171717.000200-1724500000.pdf".
func (u *ProcessorUseCase) downloadFiles(
	ctx context.Context,
	event *models.NormalizedEvent,
	files []models.SlackFile,
) ([]attachment, error) {
	stamp := time.Now().Unix()

	attachments := make([]attachment, 0, len(files))
	for i, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		base := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
		name := fmt.Sprintf("%s-%d-%s-%s-%d%s", base, i, event.ChannelID, event.MessageTS, stamp, ext)

		var buf bytes.Buffer
		if err := u.slackClient.DownloadFile(ctx, file.DownloadURL, &buf); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", file.Name, err)
		}

		attachments = append(attachments, attachment{
			name:    name,
			isImage: imageExtensions[ext],
			data:    buf.Bytes(),
		})
	}
	return attachments, nil
}

// commentBody builds the ticket comment: attribution line, message text,
// then one markup reference per attachment (inline thumbnails for images).
func (u *ProcessorUseCase) commentBody(permalink, text string, attachments []attachment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(Originating from [Slack message|%s])\n\n%s", permalink, text)

	for _, a := range attachments {
		if a.isImage {
			fmt.Fprintf(&b, "\n\n!%s|thumbnail!", a.name)
		} else {
			fmt.Fprintf(&b, "\n\n[^%s]", a.name)
		}
	}
	return b.String()
}

// syncToTicket posts blind inserts: a redelivery after a mid-sync transient
// failure re-posts the comment and attachments to tickets that already took
// them. The dedup window collapses duplicate webhooks and the receive
// budget caps redeliveries, but within those bounds a repeat is possible.
func (u *ProcessorUseCase) syncToTicket(ctx context.Context, ticketKey, body string, attachments []attachment) error {
	for _, a := range attachments {
		if err := u.jiraClient.AttachFile(ctx, ticketKey, a.name, bytes.NewReader(a.data)); err != nil {
			return err
		}
	}

	if _, err := u.jiraClient.AddComment(ctx, ticketKey, body); err != nil {
		return err
	}
	return nil
}
