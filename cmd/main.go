package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	jiraclient "threadlink/clients/jira"
	"threadlink/clients/secrets"
	slackclient "threadlink/clients/slack"
	"threadlink/config"
	"threadlink/db"
	"threadlink/handlers"
	"threadlink/middleware"
	"threadlink/queue"
	"threadlink/services/ingress"
	"threadlink/services/threadlinks"
	"threadlink/usecases/processor"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize error alert middleware
	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     cfg.SlackConfig.AppName,
		LogsURL:     cfg.ServerLogsURL,
	})

	// Resolve secrets before anything touches the outside world
	secretsProvider := secrets.NewEnvSecretsProvider()
	ctx := context.Background()

	signingSecret, err := secretsProvider.GetSecret(ctx, cfg.SlackConfig.SigningSecretID)
	if err != nil {
		return err
	}
	slackToken, err := secretsProvider.GetSecret(ctx, cfg.SlackConfig.TokenID)
	if err != nil {
		return err
	}
	jiraToken, err := secretsProvider.GetSecret(ctx, cfg.JiraConfig.TokenID)
	if err != nil {
		return err
	}

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	threadLinksRepo := db.NewPostgresThreadLinksRepository(dbConn, cfg.DatabaseSchema)
	threadLinksService := threadlinks.NewThreadLinksService(threadLinksRepo)

	slackAPI := slackclient.NewSlackClient(slackToken)
	botUserID, err := slackAPI.AuthTest()
	if err != nil {
		return err
	}
	log.Printf("✅ Slack token verified, bot user: %s", botUserID)

	jiraAPI, err := jiraclient.NewJiraClient(
		cfg.JiraConfig.ServerURL,
		jiraToken,
		cfg.JiraConfig.IconURL,
		cfg.JiraConfig.IconTitle,
	)
	if err != nil {
		return err
	}

	processorUseCase := processor.NewProcessorUseCase(
		slackAPI,
		jiraAPI,
		threadLinksService,
		botUserID,
		processor.Config{
			AppName:         cfg.SlackConfig.AppName,
			SuccessReaction: cfg.SlackConfig.SuccessReaction,
			ErrorReaction:   cfg.SlackConfig.ErrorReaction,
		},
	)

	deadLetterSink := queue.NewWebhookDeadLetterSink(
		cfg.AlertWebhookURL,
		cfg.Environment,
		cfg.SlackConfig.AppName,
	)

	deliveryQueue := queue.New(
		queue.Config{
			DedupWindow:     cfg.QueueConfig.DedupWindow,
			MaxReceiveCount: cfg.QueueConfig.MaxReceiveCount,
			ConsumerTimeout: cfg.QueueConfig.ConsumerTimeout,
		},
		alertMiddleware.WrapConsumer(processorUseCase.ProcessEvent),
		deadLetterSink,
	)
	defer deliveryQueue.Stop()

	ingressService := ingress.NewIngressService(signingSecret, cfg.SlackConfig.SyncReaction, deliveryQueue)
	slackHandler := handlers.NewSlackEventsHandler(ingressService)

	// Create a new router
	router := mux.NewRouter()
	slackHandler.SetupEndpoints(router)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(router),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
