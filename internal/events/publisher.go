package events

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
)

// Routing keys for domain events consumed by downstream services.
const (
	VisitCheckedIn         = "visit.checked_in"
	VisitCheckedOut        = "visit.checked_out"
	VisitCancelled         = "visit.cancelled"
	AppointmentScheduled   = "appointment.scheduled"
	AppointmentRescheduled = "appointment.rescheduled"
	IssueCreated           = "issue.created"
	IssueStatusChanged     = "issue.status_changed"
)

// Publisher emits domain events. Implementations must tolerate being wired
// as nil-valued no-ops when no broker is configured.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// RabbitPublisher publishes JSON events to a RabbitMQ topic exchange.
type RabbitPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewRabbitPublisher connects to RabbitMQ and declares the exchange.
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish serializes the payload to JSON and sends it to the exchange.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close terminates the connection.
func (p *RabbitPublisher) Close() error {
	if p == nil {
		return nil
	}
	_ = p.channel.Close()
	return p.conn.Close()
}
