package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"counsellor-console/logger"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Handler processes one decoded event.
type Handler func(ctx context.Context, ev AssignmentEvent) error

// Consumer reads assignment events from a consumer group and routes them by type.
// Messages that cannot be handled go to the dead-letter producer when one is set.
type Consumer struct {
	reader   messageReader
	handlers map[string]Handler
	dlq      *Producer
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:          brokers,
		Topic:            topic,
		GroupID:          groupID,
		StartOffset:      kafka.LastOffset,
		CommitInterval:   time.Second,
		MaxBytes:         10e6,
		SessionTimeout:   20 * time.Second,
		ReadBackoffMin:   100 * time.Millisecond,
		ReadBackoffMax:   1 * time.Second,
		QueueCapacity:    100,
		RebalanceTimeout: 60 * time.Second,
	})
	logger.Info("Kafka consumer initialized. Brokers=%v, Topic=%s, ConsumerGroup=%s", brokers, topic, groupID)
	return newConsumerWithReader(reader)
}

func newConsumerWithReader(r messageReader) *Consumer {
	return &Consumer{reader: r, handlers: make(map[string]Handler)}
}

// Handle registers the handler for an event type.
func (c *Consumer) Handle(event string, h Handler) {
	c.handlers[event] = h
}

// SetDeadLetter routes failed messages to p.
func (c *Consumer) SetDeadLetter(p *Producer) {
	c.dlq = p
}

// Run consumes until ctx ends. Read errors are retried with a short pause.
func (c *Consumer) Run(ctx context.Context) error {
	logger.Info("✅ Kafka consumer started")
	defer func() {
		if err := c.reader.Close(); err != nil {
			logger.Error("Error closing consumer: %v", err)
		}
		logger.Info("✅ Kafka consumer stopped")
	}()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if strings.Contains(err.Error(), "Group Coordinator Not Available") {
				sleep(ctx, 500*time.Millisecond)
				continue
			}
			logger.Warn("Kafka read failed: %v", err)
			sleep(ctx, time.Second)
			continue
		}
		if err := c.HandleMessage(ctx, msg); err != nil {
			logger.Error("Error handling message key=%s: %v", string(msg.Key), err)
			c.deadLetter(ctx, msg, err)
		}
	}
}

// HandleMessage decodes msg and calls the handler registered for its event type.
func (c *Consumer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var ev AssignmentEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if ev.Event == "" {
		return fmt.Errorf("message does not contain event type")
	}

	h, ok := c.handlers[ev.Event]
	if !ok {
		return fmt.Errorf("unknown event type: %s", ev.Event)
	}
	logger.Debug("Event type: %s id=%s", ev.Event, ev.EventID)
	if err := h(ctx, ev); err != nil {
		return fmt.Errorf("handler error for %s: %w", ev.Event, err)
	}
	return nil
}

type deadLetter struct {
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Error     string          `json:"error_message"`
	FailedAt  time.Time       `json:"failed_at"`
	Partition int             `json:"partition"`
	Offset    int64           `json:"offset"`
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if !c.dlq.Enabled() {
		return
	}
	value := json.RawMessage(msg.Value)
	if !json.Valid(msg.Value) {
		quoted, _ := json.Marshal(string(msg.Value))
		value = quoted
	}
	dl := deadLetter{
		Topic:     msg.Topic,
		Key:       string(msg.Key),
		Value:     value,
		Error:     cause.Error(),
		FailedAt:  time.Now().UTC(),
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
	if err := c.dlq.Publish(ctx, string(msg.Key), dl); err != nil {
		logger.Error("Failed to send message to DLQ: %v", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
