package kafka

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"counsellor-console/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON events to one topic. With no brokers it is disabled
// and Publish is a no-op.
//
// Enqueue hands events to a single background goroutine so callers on a hot
// path never wait on the broker. Close stops that goroutine.
type Producer struct {
	writer  messageWriter
	topic   string
	retries int
	backoff func(attempt int) time.Duration

	mu         sync.Mutex
	closed     bool
	queue      chan queuedMessage
	drained    chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
	closeGrace time.Duration
}

type queuedMessage struct {
	key     string
	payload []byte
}

// queueSize bounds the events waiting for the background publisher.
const queueSize = 256

// NewProducer builds a Kafka writer for brokers. Blank broker entries are ignored.
func NewProducer(brokers []string, topic string) *Producer {
	var validBrokers []string
	for _, b := range brokers {
		if b := strings.TrimSpace(b); b != "" {
			validBrokers = append(validBrokers, b)
		}
	}

	p := &Producer{topic: topic, retries: 3, backoff: expBackoff}
	if len(validBrokers) == 0 {
		logger.Info("Kafka is disabled (KAFKA_BROKERS is empty)")
		return p
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(validBrokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}
	p.closeGrace = 10 * time.Second
	p.start()
	logger.Info("✓ Kafka producer initialized. Brokers=%v, Topic=%s", validBrokers, topic)
	return p
}

func newProducerWithWriter(w messageWriter, topic string) *Producer {
	p := &Producer{
		writer:     w,
		topic:      topic,
		retries:    3,
		backoff:    func(int) time.Duration { return 0 },
		closeGrace: 100 * time.Millisecond,
	}
	p.start()
	return p
}

func (p *Producer) start() {
	p.queue = make(chan queuedMessage, queueSize)
	p.drained = make(chan struct{})
	p.ctx, p.cancel = context.WithCancel(context.Background())
	go p.drain()
}

func (p *Producer) drain() {
	defer close(p.drained)
	for m := range p.queue {
		if err := p.PublishRaw(p.ctx, m.key, m.payload); err != nil {
			logger.Error("❌ Dropped Kafka event %s on %s: %v", m.key, p.topic, err)
		}
	}
}

func expBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func (p *Producer) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *Producer) Topic() string {
	return p.topic
}

// Publish marshals value and writes it with key, retrying with exponential backoff.
func (p *Producer) Publish(ctx context.Context, key string, value interface{}) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("Error marshaling Kafka message: %v", err)
		return err
	}
	return p.PublishRaw(ctx, key, payload)
}

// Enqueue marshals value and queues it for the background publisher. It never
// blocks: when the queue is full or the producer is closed the event is dropped
// and false is returned.
func (p *Producer) Enqueue(key string, value interface{}) bool {
	if !p.Enabled() {
		return false
	}
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("Error marshaling Kafka message: %v", err)
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- queuedMessage{key: key, payload: payload}:
		return true
	default:
		logger.Warn("Kafka queue for %s is full; dropping event %s", p.topic, key)
		return false
	}
}

// PublishRaw writes an already encoded payload. The writer is safe for
// concurrent use, so calls are not serialized.
func (p *Producer) PublishRaw(ctx context.Context, key string, payload []byte) error {
	if !p.Enabled() {
		return nil
	}

	msg := kafka.Message{Key: []byte(key), Value: payload}

	var lastErr error
	for attempt := 0; attempt < p.retries; attempt++ {
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.writer.WriteMessages(wctx, msg)
		cancel()
		if err == nil {
			return nil
		}

		lastErr = err
		logger.Warn("Kafka publish attempt %d to %s failed: %v", attempt+1, p.topic, err)
		if attempt == p.retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}
	return lastErr
}

// Close stops accepting events, gives queued ones closeGrace to go out, then
// abandons the rest and closes the writer.
func (p *Producer) Close() error {
	if !p.Enabled() {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	select {
	case <-p.drained:
	case <-time.After(p.closeGrace):
		logger.Warn("Kafka producer for %s did not drain in %s; abandoning queued events", p.topic, p.closeGrace)
		p.cancel()
		<-p.drained
	}
	p.cancel()
	return p.writer.Close()
}

// EnsureTopic creates topic on the first reachable broker, retrying with backoff.
// An existing topic counts as success.
func EnsureTopic(ctx context.Context, brokers []string, topic string) error {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(expBackoff(attempt)):
			}
		}
		for _, broker := range brokers {
			conn, err := kafka.DialContext(ctx, "tcp", broker)
			if err != nil {
				lastErr = err
				continue
			}
			err = conn.CreateTopics(kafka.TopicConfig{
				Topic:             topic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			})
			conn.Close()
			if err == nil || strings.Contains(err.Error(), "already exists") {
				logger.Info("✓ Kafka topic '%s' ready", topic)
				return nil
			}
			lastErr = err
		}
	}
	logger.Warn("Could not ensure Kafka topic %s: %v (topic may need manual creation)", topic, lastErr)
	return lastErr
}
