package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/bangcorrupt/freesound/settings"
)

// Routing keys published on the notifications exchange.
const (
	RoutingKeyReplyNotification = "forum.reply"
)

// Notification is the message consumed by the mailer workers. The forum
// never sends mail itself; it hands the addressing and subject line to the
// queue and moves on.
type Notification struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	ThreadID int64  `json:"thread_id,string"`
	PostID   int64  `json:"post_id,string"`
	URL      string `json:"url"`
}

// Publisher abstracts the broker so tests can substitute a recorder.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

var (
	mu        sync.RWMutex
	publisher Publisher
)

// amqpPublisher publishes persistent JSON messages to a topic exchange.
type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Init connects to RabbitMQ and declares the notifications exchange. A nil
// config leaves the package unconfigured; Publish then degrades to a no-op
// with a warning.
func Init(cfg *settings.RabbitMQConfig) error {
	if cfg == nil || cfg.URL == "" {
		zap.L().Warn("rabbitmq not configured, notifications disabled")
		return nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange failed: %w", err)
	}

	SetPublisher(&amqpPublisher{conn: conn, ch: ch, exchange: cfg.Exchange})
	zap.L().Info("init rabbitmq success", zap.String("exchange", cfg.Exchange))
	return nil
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *amqpPublisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}

// SetPublisher swaps the active publisher. Tests inject fakes through this.
func SetPublisher(p Publisher) {
	mu.Lock()
	defer mu.Unlock()
	publisher = p
}

// Publish marshals v and publishes it with the given routing key. Without a
// configured publisher the message is dropped with a warning; losing a
// notification must never fail the request that produced it.
func Publish(ctx context.Context, routingKey string, v interface{}) error {
	mu.RLock()
	p := publisher
	mu.RUnlock()

	if p == nil {
		zap.L().Warn("notification dropped, no publisher configured",
			zap.String("routing_key", routingKey))
		return nil
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message failed: %w", err)
	}
	return p.Publish(ctx, routingKey, body)
}

// Close shuts the active publisher down.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if publisher != nil {
		_ = publisher.Close()
		publisher = nil
	}
}
