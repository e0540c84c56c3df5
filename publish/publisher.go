// Package publish sends sensor readings to a RabbitMQ queue.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Message is the JSON body of one published reading.
type Message struct {
	Sensor     string            `json:"sensor"`
	StopID     string            `json:"stop_id"`
	State      string            `json:"state"`
	Attributes map[string]string `json:"attributes"`
	Source     string            `json:"source"`
	Connection string            `json:"connection"`
	Diagnostic string            `json:"diagnostic"`
	TickID     string            `json:"tick_id"`
	At         time.Time         `json:"at"`
}

// NewMessage builds the message for r.
func NewMessage(sensor string, r monitor.Reading) Message {
	return Message{
		Sensor:     sensor,
		StopID:     r.StopID,
		State:      r.State(),
		Attributes: r.Attributes(),
		Source:     r.Source.String(),
		Connection: r.Connection.String(),
		Diagnostic: r.Diagnostic.String(),
		TickID:     r.TickID,
		At:         r.At,
	}
}

// Publisher publishes readings to one queue through the default exchange.
type Publisher struct {
	ch     Channel
	queue  string
	sensor string
}

// NewPublisher declares queue on ch and returns a publisher for it.
func NewPublisher(ch Channel, queue, sensor string) (*Publisher, error) {
	if _, err := ch.QueueDeclare(queue, false, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &Publisher{ch: ch, queue: queue, sensor: sensor}, nil
}

// Publish sends r as JSON.
func (p *Publisher) Publish(ctx context.Context, r monitor.Reading) error {
	body, err := json.Marshal(NewMessage(p.sensor, r))
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    r.TickID,
		Timestamp:    r.At,
		DeliveryMode: amqp.Transient,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	return nil
}

// Dial connects to the broker at url and opens a channel.
func Dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 60 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}
	return conn, ch, nil
}
