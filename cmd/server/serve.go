package main

import (
	"context"
	"errors"
	netHttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"counsellor-console/db"
	"counsellor-console/http"
	"counsellor-console/http/handlers"
	"counsellor-console/logger"
	"counsellor-console/services/assign"
	"counsellor-console/services/kafka"
	"counsellor-console/services/leads"
	"counsellor-console/services/pricing"
	"counsellor-console/services/reassign"
	"counsellor-console/services/reports"
	"counsellor-console/services/rules"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
	}
	audit := db.NewAuditStore(conn, cfg.AuditDriver)

	// Kafka is optional; publishing is a no-op without brokers
	brokers := cfg.KafkaBrokerList()
	if len(brokers) > 0 {
		if err := kafka.EnsureTopic(ctx, brokers, cfg.KafkaTopic); err != nil {
			logger.Warn("Kafka topic check failed: %v", err)
		}
	}
	producer := kafka.NewProducer(brokers, cfg.KafkaTopic)
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error("Error closing Kafka producer: %v", err)
		}
	}()

	client := newCRMClient()
	dispatcher := reassign.NewDispatcher(reassign.Deps{
		Replacer:    client,
		Recorder:    reassign.MultiRecorder{audit, kafka.ReplacementRecorder{Producer: producer}},
		Concurrency: cfg.DispatchConcurrency,
	})
	registry := reassign.NewRegistry(reassign.NewFetcher(client, client), dispatcher, cfg.SessionTTL)
	go registry.Run(ctx)

	router := http.NewRouter(http.Handlers{
		Reassign:    handlers.NewReassignHandler(registry),
		Counsellors: handlers.NewCounsellorHandler(client, assign.NewL2Assigner(client, producer)),
		Rules:       handlers.NewRuleHandler(rules.NewService(client), client),
		Pricing:     handlers.NewPricingHandler(pricing.NewService(client)),
		Reports:     handlers.NewReportHandler(reports.NewService(client)),
		Leads:       handlers.NewLeadHandler(leads.NewService(client, cfg.DispatchConcurrency)),
		Audit:       handlers.NewAuditHandler(audit),
		CORSOrigin:  cfg.CORSOrigin,
	})

	srv := &netHttp.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, netHttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}
	logger.Info("Server shutdown complete")
	return nil
}
