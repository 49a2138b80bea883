package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain/events"
	"github.com/amirasaad/studentrelief/pkg/eventbus"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQEventBus publishes to a durable topic exchange with the event type
// as routing key. Each registered type gets a durable queue bound to it.
type RabbitMQEventBus struct {
	conn     *amqp.Connection
	pubCh    *amqp.Channel
	pubMu    sync.Mutex
	exchange string
	queue    string
	logger   *slog.Logger

	consumerChs []*amqp.Channel
	wg          sync.WaitGroup
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewWithRabbitMQ dials the broker and declares the exchange.
func NewWithRabbitMQ(cfg *config.RabbitMQ, logger *slog.Logger) (*RabbitMQEventBus, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq event bus: url is required")
	}
	cleanURL, err := sanitizeAMQPURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq event bus: %w", err)
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq event bus: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq event bus: channel failed: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq event bus: exchange declare failed: %w", err)
	}

	return &RabbitMQEventBus{
		conn:     conn,
		pubCh:    ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		logger:   logger.With("bus", "rabbitmq"),
	}, nil
}

// Emit publishes the event as a persistent message.
func (b *RabbitMQEventBus) Emit(ctx context.Context, event events.Event) error {
	body, err := encodeEnvelope(event)
	if err != nil {
		return err
	}
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	err = b.pubCh.PublishWithContext(ctx,
		b.exchange,
		routingKeyFor(events.EventType(event.Type())),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq event bus: publish failed: %w", err)
	}
	return nil
}

// Register declares "<queue>.<routing key>", binds it and starts consuming.
// Undecodable messages are dropped, handler failures are requeued once and
// dropped on redelivery.
func (b *RabbitMQEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	key := routingKeyFor(eventType)
	queueName := b.queue + "." + key

	ch, err := b.conn.Channel()
	if err != nil {
		b.logger.Error("failed to open consumer channel", "error", err, "event_type", eventType)
		return
	}
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err == nil {
		err = ch.QueueBind(q.Name, key, b.exchange, false, nil)
	}
	var msgs <-chan amqp.Delivery
	if err == nil {
		msgs, err = ch.Consume(q.Name, "", false, false, false, false, nil)
	}
	if err != nil {
		_ = ch.Close()
		b.logger.Error("failed to start consumer", "error", err, "queue", queueName)
		return
	}
	b.consumerChs = append(b.consumerChs, ch)

	b.logger.Info("📥 registering handler", "event_type", eventType, "queue", queueName)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for d := range msgs {
			evt, err := decodeEnvelope(d.Body)
			if err != nil {
				b.logger.Error("failed to decode message", "error", err, "queue", queueName)
				_ = d.Nack(false, false)
				continue
			}
			if runHandler(context.Background(), b.logger, handler, evt) {
				_ = d.Ack(false)
				continue
			}
			_ = d.Nack(false, !d.Redelivered)
		}
	}()
}

// Close closes the channels and connection and waits for consumers to drain.
func (b *RabbitMQEventBus) Close() error {
	for _, ch := range b.consumerChs {
		_ = ch.Close()
	}
	_ = b.pubCh.Close()
	err := b.conn.Close()
	b.wg.Wait()
	return err
}

var _ eventbus.Bus = (*RabbitMQEventBus)(nil)
