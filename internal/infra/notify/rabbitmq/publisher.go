package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"signature/internal/app/policies"
)

const (
	TypeReservationRequested = "reservation.requested"
	TypePackRequested        = "pack.requested"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Connection interface {
	Close() error
	IsClosed() bool
}

// Dialer opens a connection and a channel on it.
type Dialer func() (Channel, Connection, error)

// Publisher sends notification jobs to a durable queue consumed by the mailer.
// The connection is opened lazily and reopened after a failure.
type Publisher struct {
	Queue string
	Dial  Dialer
	// Timeout bounds a single publish; zero leaves ctx untouched.
	Timeout time.Duration

	mu   sync.Mutex
	conn Connection
	ch   Channel
}

// NewPublisher dials url on first use.
func NewPublisher(url, queue string) *Publisher {
	return &Publisher{
		Queue: queue,
		Dial: func() (Channel, Connection, error) {
			conn, err := amqp.Dial(url)
			if err != nil {
				return nil, nil, err
			}
			ch, err := conn.Channel()
			if err != nil {
				_ = conn.Close()
				return nil, nil, err
			}
			return ch, conn, nil
		},
	}
}

func (p *Publisher) ReservationRequested(ctx context.Context, notice policies.ReservationNotice) error {
	return p.publish(ctx, TypeReservationRequested, notice.ReservationID, notice)
}

func (p *Publisher) PackRequested(ctx context.Context, notice policies.PackRequestNotice) error {
	return p.publish(ctx, TypePackRequested, notice.RequestID, notice)
}

func (p *Publisher) publish(ctx context.Context, kind, id string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Type:         kind,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, msg); err != nil {
		p.reset()
		return err
	}
	return nil
}

// channel returns an open channel with the queue declared. Callers hold mu.
func (p *Publisher) channel() (Channel, error) {
	if p.ch != nil && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if p.Dial == nil {
		return nil, errors.New("rabbitmq: dialer required")
	}
	ch, conn, err := p.Dial()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.ch, p.conn = ch, conn
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

var _ policies.Notifier = (*Publisher)(nil)
