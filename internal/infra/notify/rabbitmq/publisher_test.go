package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"signature/internal/app/policies"
)

type fakeConn struct{ closed bool }

func (c *fakeConn) Close() error   { c.closed = true; return nil }
func (c *fakeConn) IsClosed() bool { return c.closed }

type fakeChannel struct {
	declared []string
	sent     []amqp.Publishing
	fail     error
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	if c.fail != nil {
		return c.fail
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeChannel) Close() error { return nil }

func TestPublisherSendsPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	dials := 0
	p := &Publisher{Queue: "notifications", Dial: func() (Channel, Connection, error) {
		dials++
		return ch, &fakeConn{}, nil
	}}
	ctx := context.Background()
	if err := p.ReservationRequested(ctx, policies.ReservationNotice{ReservationID: "r1", GuestEmail: "a@b.cm", TotalPrice: 300000}); err != nil {
		t.Fatal(err)
	}
	if err := p.PackRequested(ctx, policies.PackRequestNotice{RequestID: "q1", PackName: "Mariage"}); err != nil {
		t.Fatal(err)
	}
	if dials != 1 || len(ch.declared) != 1 || ch.declared[0] != "notifications" {
		t.Fatalf("dials = %d declared = %v", dials, ch.declared)
	}
	first := ch.sent[0]
	if first.Type != TypeReservationRequested || first.MessageId != "r1" || first.DeliveryMode != amqp.Persistent {
		t.Fatalf("message = %+v", first)
	}
	var body policies.ReservationNotice
	if err := json.Unmarshal(first.Body, &body); err != nil || body.TotalPrice != 300000 {
		t.Fatalf("body = %+v, %v", body, err)
	}
	if ch.sent[1].Type != TypePackRequested {
		t.Fatalf("second type = %s", ch.sent[1].Type)
	}
}

func TestPublisherRedialsAfterFailure(t *testing.T) {
	broken := &fakeChannel{fail: errors.New("channel closed")}
	healthy := &fakeChannel{}
	channels := []*fakeChannel{broken, healthy}
	p := &Publisher{Queue: "q", Dial: func() (Channel, Connection, error) {
		ch := channels[0]
		channels = channels[1:]
		return ch, &fakeConn{}, nil
	}}
	ctx := context.Background()
	if err := p.PackRequested(ctx, policies.PackRequestNotice{RequestID: "q1"}); err == nil {
		t.Fatal("expected failure on broken channel")
	}
	if err := p.PackRequested(ctx, policies.PackRequestNotice{RequestID: "q2"}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(healthy.sent) != 1 {
		t.Fatalf("sent = %d", len(healthy.sent))
	}
}

func TestPublisherDialError(t *testing.T) {
	p := &Publisher{Queue: "q", Dial: func() (Channel, Connection, error) { return nil, nil, errors.New("refused") }}
	if err := p.ReservationRequested(context.Background(), policies.ReservationNotice{}); err == nil {
		t.Fatal("expected dial error")
	}
}
