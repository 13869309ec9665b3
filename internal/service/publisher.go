package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinexplorer/internal/queue"
)

// DefaultDialTimeout bounds the TCP connect to the broker. amqp.Dial alone
// waits up to 30s.
const DefaultDialTimeout = 2 * time.Second

// Publisher hands a committed checkout to the message broker. Failures are
// returned to the caller, which logs them without failing the purchase.
type Publisher interface {
	PublishTicketsIssued(ctx context.Context, ev queue.TicketsIssuedEvent) error
}

// AMQPPublisher dials RabbitMQ for every publish. Checkouts are infrequent
// enough that a long-lived channel is not worth its reconnect handling.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, DialTimeout: DefaultDialTimeout}
}

// PublishTicketsIssued sends ev as a persistent JSON message to the
// tickets.issued queue.
func (p *AMQPPublisher) PublishTicketsIssued(ctx context.Context, ev queue.TicketsIssuedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(timeout)})
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue.TicketsIssuedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", queue.TicketsIssuedQueue, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.Code,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.TicketsIssuedQueue, false, false, pub); err != nil {
		return fmt.Errorf("publish ticket %d: %w", ev.TicketID, err)
	}
	return nil
}
