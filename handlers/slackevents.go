package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"threadlink/services/ingress"
)

// SlackEventsHandler is the webhook boundary: verify, normalize, enqueue,
// answer. All actual Slack and Jira work happens later on the queue, so the
// response goes back well inside the webhook deadline.
type SlackEventsHandler struct {
	ingressService *ingress.IngressService
}

func NewSlackEventsHandler(ingressService *ingress.IngressService) *SlackEventsHandler {
	return &SlackEventsHandler{ingressService: ingressService}
}

func (h *SlackEventsHandler) HandleSlackEvent(w http.ResponseWriter, r *http.Request) {
	log.Printf("📨 Slack event received from %s", r.RemoteAddr)

	// Read raw body for signature verification
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("❌ Failed to read request body: %v", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	timestamp := r.Header.Get("X-Slack-Request-Timestamp")
	signature := r.Header.Get("X-Slack-Signature")
	if err := h.ingressService.VerifySignature(timestamp, signature, bodyBytes); err != nil {
		log.Printf("❌ Slack signature verification failed: %v", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	log.Printf("✅ Slack signature verified successfully")

	var body map[string]any
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		log.Printf("❌ Failed to parse JSON body: %v", err)
		http.Error(w, "failed to parse body", http.StatusBadRequest)
		return
	}

	if body["type"] == "url_verification" {
		log.Printf("🔐 Slack URL verification challenge received")
		challenge, ok := body["challenge"].(string)
		if !ok {
			log.Printf("❌ Challenge not found in verification request")
			http.Error(w, "challenge not found", http.StatusBadRequest)
			return
		}
		log.Printf("✅ Responding to Slack URL verification challenge")
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte(challenge)); err != nil {
			log.Printf("❌ Failed to write challenge response: %v", err)
		}
		return
	}

	if body["type"] != "event_callback" {
		log.Printf("📋 Non-event callback received: %s", body["type"])
		w.WriteHeader(http.StatusOK)
		return
	}

	event, ok := body["event"].(map[string]any)
	if !ok {
		log.Printf("❌ Event callback without event payload")
		http.Error(w, "event not found", http.StatusBadRequest)
		return
	}

	normalized, err := h.ingressService.NormalizeEvent(event)
	if err != nil {
		if errors.Is(err, ingress.ErrUnsupportedEvent) {
			// Slack fans out every subscribed event type; the ones outside
			// our contract get a 200 so Slack stops redelivering them.
			log.Printf("⏭️ Ignoring event: %v", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Printf("❌ Failed to normalize event: %v", err)
		http.Error(w, "failed to normalize event", http.StatusBadRequest)
		return
	}

	if err := h.ingressService.Accept(normalized); err != nil {
		// Non-2xx makes Slack redeliver; dedup collapses the retry if the
		// first enqueue actually landed.
		log.Printf("❌ Failed to accept event: %v", err)
		http.Error(w, "failed to accept event", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *SlackEventsHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering Slack webhook endpoints")

	router.HandleFunc("/slack/events", h.HandleSlackEvent).Methods("POST")
	log.Printf("✅ POST /slack/events endpoint registered")
}
