package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"threadlink/models"
)

// LogDeadLetterSink records dead-lettered envelopes in the service log only
type LogDeadLetterSink struct{}

func (s *LogDeadLetterSink) HandleDeadLetter(envelope *models.DeliveryEnvelope, reason error) {
	payload, _ := json.Marshal(envelope)
	log.Printf("💀 Dead letter (group: %s, receives: %d, reason: %v): %s",
		envelope.GroupID, envelope.ReceiveCount, reason, payload)
}

// WebhookDeadLetterSink logs the envelope and escalates it to an alerting
// webhook so operators see dead-lettered work. The user gets no reaction at
// this point: transient failures stay invisible until retries exhaust, and
// then surface only operationally.
type WebhookDeadLetterSink struct {
	webhookURL  string
	environment string
	appName     string
	httpClient  *http.Client
}

func NewWebhookDeadLetterSink(webhookURL, environment, appName string) *WebhookDeadLetterSink {
	return &WebhookDeadLetterSink{
		webhookURL:  webhookURL,
		environment: environment,
		appName:     appName,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookDeadLetterSink) HandleDeadLetter(envelope *models.DeliveryEnvelope, reason error) {
	envelopeJSON, _ := json.Marshal(envelope)
	log.Printf("💀 Dead letter (group: %s, receives: %d, reason: %v): %s",
		envelope.GroupID, envelope.ReceiveCount, reason, envelopeJSON)

	if s.webhookURL == "" {
		return // alerting disabled
	}

	payload := map[string]any{
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{
					"type":  "plain_text",
					"text":  fmt.Sprintf("💀 [%s] %s dead letter", s.environment, s.appName),
					"emoji": true,
				},
			},
			{
				"type": "section",
				"fields": []map[string]any{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Group:* %s", envelope.GroupID)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Receives:* %d", envelope.ReceiveCount)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Event kind:* %s", envelope.Event.Kind)},
				},
			},
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Reason:*\n```%v```", reason),
				},
			},
		},
	}

	payloadBytes, _ := json.Marshal(payload)

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", strings.NewReader(string(payloadBytes)))
	if err != nil {
		log.Printf("❌ Failed to send dead letter alert: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ Dead letter alert failed with status: %d", resp.StatusCode)
	}
}
