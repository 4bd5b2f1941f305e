package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/verte-zerg/wordtally/internal/model"
)

// DefaultQueue receives records when no queue name is configured.
const DefaultQueue = "wordtally.records"

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQP publishes records as JSON messages to a durable RabbitMQ queue.
type AMQP struct {
	queue string
	conn  *amqp.Connection
	ch    *amqp.Channel

	mu  sync.Mutex
	pub publisher
	now func() time.Time
}

// DialAMQP connects to url and declares queue.
func DialAMQP(url, queue string) (*AMQP, error) {
	queue = strings.TrimSpace(queue)
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &AMQP{queue: queue, conn: conn, ch: ch, pub: ch, now: time.Now}, nil
}

// SaveRecord implements session.Sink.
func (a *AMQP) SaveRecord(ctx context.Context, rec model.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	// Channels are not safe for concurrent publishing.
	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.pub.PublishWithContext(ctx,
		"",      // default exchange
		a.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    rec.ID,
			Timestamp:    a.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish record: %w", err)
	}
	return nil
}

// Close closes the channel and connection.
func (a *AMQP) Close() error {
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
