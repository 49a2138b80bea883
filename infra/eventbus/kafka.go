package eventbus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	"github.com/segmentio/kafka-go"
)

const (
	defaultTopicPrefix = "studentrelief.events"
	kafkaRetryDelay    = 500 * time.Millisecond
	headerEventType    = "event-type"
	headerFailure      = "x-failure"
)

// KafkaEventBus publishes each event type to its own topic and runs one
// consumer-group reader per registered type. Messages are keyed by
// partitionKey so a recipient's notifications stay in order.
type KafkaEventBus struct {
	brokers []string
	groupID string
	prefix  string
	writer  *kafka.Writer
	dialer  *kafka.Dialer
	logger  *slog.Logger

	mu       sync.RWMutex
	handlers map[events.EventType][]eventbus.HandlerFunc
	readers  map[events.EventType]*kafka.Reader

	// topics already created on the cluster
	topics sync.Map

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka dials the first broker and returns a ready bus.
// cfg.Brokers is comma-separated.
func NewWithKafka(cfg *config.Kafka, logger *slog.Logger) (*KafkaEventBus, error) {
	if cfg == nil {
		return nil, errors.New("kafka event bus: config is required")
	}
	brokers := parseBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka event bus: brokers are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &KafkaEventBus{
		brokers: brokers,
		groupID: cmp.Or(cfg.GroupID, "studentrelief"),
		prefix:  cmp.Or(strings.TrimSpace(cfg.TopicPrefix), defaultTopicPrefix),
		dialer:  &kafka.Dialer{Timeout: 5 * time.Second},
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
		},
		logger:   logger.With("bus", "kafka"),
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		readers:  make(map[events.EventType]*kafka.Reader),
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())

	conn, err := b.dialer.DialContext(b.ctx, "tcp", brokers[0])
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()

	b.logger.Info("🚀 Kafka event bus ready", "group_id", b.groupID, "brokers", brokers)
	return b, nil
}

// Close stops the readers, waits for in-flight handlers and flushes the writer.
func (b *KafkaEventBus) Close() error {
	if b == nil {
		return nil
	}
	b.cancel()

	b.mu.Lock()
	var errs []error
	for _, r := range b.readers {
		errs = append(errs, r.Close())
	}
	b.mu.Unlock()

	b.wg.Wait()
	errs = append(errs, b.writer.Close())
	return errors.Join(errs...)
}

// Register adds a handler. The first handler for a type starts its reader.
func (b *KafkaEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	_, running := b.readers[eventType]
	b.mu.Unlock()

	if !running {
		b.startReader(eventType)
	}
}

func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	payload, err := encodeEnvelope(event)
	if err != nil {
		return err
	}
	eventType := events.EventType(event.Type())
	topic := topicNameFor(b.prefix, eventType)
	if err := b.ensureTopic(ctx, topic); err != nil {
		return err
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(partitionKey(event)),
		Value:   payload,
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(eventType)}},
		Time:    time.Now(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka event bus: publish %s: %w", eventType, err)
	}
	return nil
}

func (b *KafkaEventBus) startReader(eventType events.EventType) {
	topic := topicNameFor(b.prefix, eventType)
	if err := b.ensureTopic(b.ctx, topic); err != nil {
		b.logger.Error("kafka topic unavailable", "event_type", eventType, "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, running := b.readers[eventType]; running {
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.groupID,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		Dialer:      b.dialer,
	})
	b.readers[eventType] = reader

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, reader)
	}()
}

// consume commits a message only after it was handled or dead-lettered, so
// anything else is redelivered to the group.
func (b *KafkaEventBus) consume(eventType events.EventType, reader *kafka.Reader) {
	log := b.logger.With("event_type", eventType)
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			log.Error("kafka fetch failed", "error", err)
			if !b.pause() {
				return
			}
			continue
		}

		if err := b.dispatch(eventType, msg); err != nil {
			log.Error("kafka message not handled, retrying", "offset", msg.Offset, "error", err)
			if !b.pause() {
				return
			}
			continue
		}
		if err := reader.CommitMessages(b.ctx, msg); err != nil && b.ctx.Err() == nil {
			log.Error("kafka commit failed", "offset", msg.Offset, "error", err)
		}
	}
}

// pause waits before a retry and reports false when the bus is closing.
func (b *KafkaEventBus) pause() bool {
	select {
	case <-b.ctx.Done():
		return false
	case <-time.After(kafkaRetryDelay):
		return true
	}
}

func (b *KafkaEventBus) dispatch(eventType events.EventType, msg kafka.Message) error {
	evt, err := decodeEnvelope(msg.Value)
	if err != nil {
		return b.deadLetter(eventType, msg, err.Error())
	}

	b.mu.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
	b.mu.RUnlock()

	failed := 0
	for _, h := range handlers {
		if !runHandler(b.ctx, b.logger, h, evt) {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return b.deadLetter(eventType, msg, fmt.Sprintf("%d of %d handlers failed", failed, len(handlers)))
}

func (b *KafkaEventBus) deadLetter(eventType events.EventType, msg kafka.Message, reason string) error {
	topic := dlqTopicNameFor(b.prefix, eventType)
	if err := b.ensureTopic(b.ctx, topic); err != nil {
		return err
	}
	err := b.writer.WriteMessages(b.ctx, kafka.Message{
		Topic: topic,
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers, kafka.Header{
			Key: headerFailure, Value: []byte(reason),
		}),
		Time: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("kafka event bus: dead-letter %s: %w", eventType, err)
	}
	b.logger.Warn("message dead-lettered", "event_type", eventType, "topic", topic, "reason", reason)
	return nil
}

func (b *KafkaEventBus) ensureTopic(ctx context.Context, topic string) error {
	if _, ok := b.topics.Load(topic); ok {
		return nil
	}

	conn, err := b.dialer.DialContext(ctx, "tcp", b.brokers[0])
	if err != nil {
		return fmt.Errorf("kafka event bus: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	err = conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("kafka event bus: create topic %s: %w", topic, err)
	}
	b.topics.Store(topic, struct{}{})
	return nil
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, p := range strings.Split(brokers, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func topicNameFor(prefix string, eventType events.EventType) string {
	return prefix + "." + strings.ToLower(eventType.String())
}

func dlqTopicNameFor(prefix string, eventType events.EventType) string {
	return prefix + ".dlq." + strings.ToLower(eventType.String())
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
