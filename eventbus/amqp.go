// Package eventbus publishes scheduler.Event notifications to an AMQP
// exchange, the transport spec §4.14 uses for "a transition fired"
// notifications leaving the process. Grounded on the teacher's
// amqp/amqp.go connection/channel wrapper and comm/amqp/client.go's
// routing-key and header conventions, narrowed from RPC request/response
// to one-way fire-and-forget publishing.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bnetrun/bnet/scheduler"
)

const publishTimeout = 5 * time.Second

// Connection bundles an amqp.Connection with the single Channel this
// package publishes on, closing both together.
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial opens a connection to url and declares a topic exchange named
// exchange, creating it if absent.
func Dial(url, exchange string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("eventbus: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("eventbus: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("eventbus: declare exchange: %w", err)
	}
	return &Connection{conn: conn, ch: ch}, nil
}

func (c *Connection) Close() error {
	if err := c.ch.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}

// Publisher implements scheduler.Notifier, publishing one message per
// fired transition with routing key "<net_id>.<transition_id>".
type Publisher struct {
	conn     *Connection
	exchange string
}

func NewPublisher(conn *Connection, exchange string) *Publisher {
	return &Publisher{conn: conn, exchange: exchange}
}

type eventBody struct {
	NetID        string `json:"net_id"`
	TransitionID string `json:"transition_id"`
	FiredAt      string `json:"fired_at"`
}

// routingKey builds the topic routing key for an event: "<net_id>.<transition_id>".
func routingKey(ev scheduler.Event) string {
	return ev.NetID + "." + ev.TransitionID
}

// encode marshals an Event to the wire body this package publishes.
func encode(ev scheduler.Event) ([]byte, error) {
	return json.Marshal(eventBody{
		NetID:        ev.NetID,
		TransitionID: ev.TransitionID,
		FiredAt:      ev.FiredAt.Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// Publish satisfies scheduler.Notifier. It is best-effort: the scheduler
// logs and continues the epoch on error rather than treating this as fatal.
func (p *Publisher) Publish(ev scheduler.Event) error {
	body, err := encode(ev)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return p.conn.ch.PublishWithContext(ctx, p.exchange, routingKey(ev), false, false, amqp.Publishing{
		Body:         body,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers: amqp.Table{
			"x-transition-id": ev.TransitionID,
		},
	})
}
