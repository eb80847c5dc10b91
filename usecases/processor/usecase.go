// Package processor consumes delivery envelopes from the queue, dispatches
// them to the register/deregister/sync handlers, and reports the outcome
// back to the originating Slack message as a reaction.
package processor

import (
	"context"
	"log"
	"strings"

	"threadlink/clients"
	"threadlink/core"
	"threadlink/models"
	"threadlink/services"
	"threadlink/utils"
)

type Config struct {
	AppName         string
	SuccessReaction string
	ErrorReaction   string
}

type ProcessorUseCase struct {
	slackClient        clients.SlackClient
	jiraClient         clients.JiraClient
	threadLinksService services.ThreadLinksService
	config             Config
	// the bot's own user ID, used to ignore self-triggered events and to
	// find its previous feedback reactions
	botUserID string
}

func NewProcessorUseCase(
	slackClient clients.SlackClient,
	jiraClient clients.JiraClient,
	threadLinksService services.ThreadLinksService,
	botUserID string,
	config Config,
) *ProcessorUseCase {
	return &ProcessorUseCase{
		slackClient:        slackClient,
		jiraClient:         jiraClient,
		threadLinksService: threadLinksService,
		botUserID:          botUserID,
		config:             config,
	}
}

// ProcessEvent is the queue consumer. The outcome contract:
//   - success and terminal failures acknowledge the delivery (nil return)
//     and leave exactly one reaction on the originating message
//   - transient failures return an error (nack) and leave no reaction;
//     the queue's redelivery budget takes it from there
//
// Register and deregister are idempotent under at-least-once delivery:
// their persistence and API calls are upserts keyed on the compound
// thread/ticket identity. Sync's comment and attachment posts are not (see
// syncToTicket); the queue's dedup window and receive budget bound how
// often a redelivery can re-post.
func (u *ProcessorUseCase) ProcessEvent(ctx context.Context, envelope *models.DeliveryEnvelope) error {
	event := &envelope.Event
	log.Printf("📨 Processing %s event for group %s (attempt %d)", event.Kind, envelope.GroupID, envelope.ReceiveCount)

	if event.UserID == u.botUserID {
		log.Printf("⏭️ Ignoring event triggered by the bot itself")
		return nil
	}

	command := u.parseCommand(event)
	if command.Type == models.CommandTypeNoOp {
		// Not every mention is a command; acknowledge without feedback.
		log.Printf("⏭️ No command in event text, ignoring: %q", event.Text)
		return nil
	}

	err := u.dispatch(ctx, event, command)
	if err == nil {
		log.Printf("✅ %s completed for group %s", command.Type, envelope.GroupID)
		u.acknowledge(ctx, event, u.config.SuccessReaction)
		return nil
	}

	if core.IsTerminal(err) {
		log.Printf("❌ %s failed terminally for group %s: %v", command.Type, envelope.GroupID, err)
		u.acknowledge(ctx, event, u.config.ErrorReaction)
		return nil
	}

	log.Printf("⚠️ %s failed transiently for group %s: %v", command.Type, envelope.GroupID, err)
	return err
}

func (u *ProcessorUseCase) parseCommand(event *models.NormalizedEvent) models.Command {
	switch event.Kind {
	case models.EventKindAppMention:
		return utils.ParseCommand(event.Text)
	case models.EventKindReactionAdded:
		return models.Command{Type: models.CommandTypeSync}
	default:
		return models.Command{Type: models.CommandTypeNoOp}
	}
}

func (u *ProcessorUseCase) dispatch(ctx context.Context, event *models.NormalizedEvent, command models.Command) error {
	switch command.Type {
	case models.CommandTypeRegister:
		return u.handleRegister(ctx, event, command)
	case models.CommandTypeDeregister:
		return u.handleDeregister(ctx, event, command)
	case models.CommandTypeSync:
		return u.handleSync(ctx, event)
	default:
		return nil
	}
}

// acknowledge leaves exactly one feedback reaction on the originating
// message, clearing the bot's previous reactions first so repeated commands
// don't accumulate stale feedback. Feedback is best-effort: a failure here
// must not turn a settled outcome back into a retry.
func (u *ProcessorUseCase) acknowledge(ctx context.Context, event *models.NormalizedEvent, reaction string) {
	item := clients.SlackItemRef{Channel: event.ChannelID, Timestamp: event.MessageTS}

	u.removeBotReactions(ctx, item)

	if err := u.slackClient.AddReaction(ctx, reaction, item); err != nil {
		if strings.Contains(err.Error(), "already_reacted") {
			return
		}
		log.Printf("❌ Failed to add %s reaction to %s/%s: %v", reaction, event.ChannelID, event.MessageTS, err)
	}
}

func (u *ProcessorUseCase) removeBotReactions(ctx context.Context, item clients.SlackItemRef) {
	reactions, err := u.slackClient.GetReactions(ctx, item)
	if err != nil {
		log.Printf("❌ Failed to list reactions on %s/%s: %v", item.Channel, item.Timestamp, err)
		return
	}

	for _, reaction := range reactions {
		for _, user := range reaction.Users {
			if user != u.botUserID {
				continue
			}
			if err := u.slackClient.RemoveReaction(ctx, reaction.Name, item); err != nil &&
				!strings.Contains(err.Error(), "no_reaction") {
				log.Printf("❌ Failed to remove %s reaction from %s/%s: %v",
					reaction.Name, item.Channel, item.Timestamp, err)
			}
			break
		}
	}
}
