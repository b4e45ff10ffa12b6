package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"counsellor-console/logger"
	"counsellor-console/services"
	"counsellor-console/services/kafka"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume assignment events and email the counsellors involved",
	Long: `Reads assignment events from KAFKA_TOPIC and sends notification emails.
Events that still fail after handling are republished to <topic>.dlq.`,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	brokers := cfg.KafkaBrokerList()
	if len(brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dlq := kafka.NewProducer(brokers, cfg.KafkaTopic+".dlq")
	defer dlq.Close()

	consumer := kafka.NewConsumer(brokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	consumer.SetDeadLetter(dlq)
	services.NewNotifier(services.NewEmailSender(cfg), newCRMClient()).Register(consumer)

	logger.Info("🔄 Notification worker listening on %s", cfg.KafkaTopic)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("Notification worker stopped")
	return nil
}
