package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/theoremus-urban-solutions/departure-sensor/feed"
	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	declareErr error
	publishErr error
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, c.declareErr
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "departures", "BVG")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "departures" {
		t.Errorf("declared = %v", ch.declared)
	}

	at := time.Date(2024, 5, 17, 8, 0, 0, 0, time.UTC)
	when := at.Add(3 * time.Minute)
	product := feed.ProductSubway
	r := monitor.Reading{
		TickID:    "tick-7",
		StopID:    "900000100003",
		At:        at,
		Departure: &feed.Departure{Direction: "U Pankow", When: &when, Product: &product, LineName: "U2"},
		DueIn:     3,
		Source:    monitor.SourceCache,
	}
	if err := p.Publish(context.Background(), r); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(ch.published) != 1 || ch.keys[0] != "departures" {
		t.Fatalf("published %d messages to %v", len(ch.published), ch.keys)
	}
	msg := ch.published[0]
	if msg.ContentType != "application/json" || msg.MessageId != "tick-7" {
		t.Errorf("publishing = %+v", msg)
	}
	var body Message
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Sensor != "BVG" || body.State != "3" || body.Source != "cache" {
		t.Errorf("body = %+v", body)
	}
	if body.Attributes[monitor.AttrLineName] != "U2" || body.Attributes[monitor.AttrType] != feed.ProductSubway {
		t.Errorf("attributes = %v", body.Attributes)
	}
	if !body.At.Equal(at) {
		t.Errorf("at = %s, want %s", body.At, at)
	}
	t.Logf("✓ Published %d bytes", len(msg.Body))
}

func TestPublisher_Errors(t *testing.T) {
	boom := errors.New("channel closed")

	if _, err := NewPublisher(&fakeChannel{declareErr: boom}, "q", "BVG"); !errors.Is(err, boom) {
		t.Errorf("declare err = %v", err)
	}

	p, err := NewPublisher(&fakeChannel{publishErr: boom}, "q", "BVG")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if err := p.Publish(context.Background(), monitor.Reading{}); !errors.Is(err, boom) {
		t.Errorf("publish err = %v", err)
	}
}
