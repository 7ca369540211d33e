package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jurnal/internal/models"

	log "github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// BlogEventsQueue is the durable queue blog events are published to.
const BlogEventsQueue = "blog_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// guards channel; an amqp.Channel must not be used by concurrent publishers
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the blog events queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithField("queue", BlogEventsQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		BlogEventsQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", BlogEventsQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// newPublishing encodes event as a persistent JSON message.
func newPublishing(event models.BlogEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal blog event: %w", err)
	}
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         event.Type,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
	}, nil
}

// PublishBlogEvent publishes event to the blog events queue.
func (c *Client) PublishBlogEvent(event models.BlogEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",              // default exchange
		BlogEventsQueue, // routing key
		false,           // mandatory
		false,           // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish blog event: %w", err)
	}

	log.WithFields(log.Fields{"event": event.Type, "blog_id": event.BlogID}).Debug("Published blog event")
	return nil
}

// DecodeBlogEvent parses a delivery body produced by PublishBlogEvent.
func DecodeBlogEvent(body []byte) (models.BlogEvent, error) {
	var event models.BlogEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("failed to decode blog event: %w", err)
	}
	if event.Type == "" {
		return event, fmt.Errorf("failed to decode blog event: missing type")
	}
	return event, nil
}

// ConsumeBlogEvents starts a goroutine feeding each delivery on the blog events
// queue to handler. Deliveries are acked when handler returns nil. Failed ones
// are nacked without requeue so a poison message cannot loop.
func (c *Client) ConsumeBlogEvents(handler func(event models.BlogEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	c.mu.Lock()
	queue, err := declareQueue(c.channel)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.WithField("queue", queue.Name).Info("Waiting for blog events")

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
		log.Info("Blog event consumer stopped")
	}()

	return nil
}

// acknowledger is the part of amqp.Delivery handleDelivery needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(msg amqp.Delivery, handler func(event models.BlogEvent) error) {
	processDelivery(&msg, msg.DeliveryTag, msg.Body, handler)
}

func processDelivery(ack acknowledger, tag uint64, body []byte, handler func(event models.BlogEvent) error) {
	entry := log.WithField("delivery_tag", tag)

	event, err := DecodeBlogEvent(body)
	if err == nil {
		err = handler(event)
	}
	if err != nil {
		entry.WithError(err).Warn("Error processing blog event")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			entry.WithError(nackErr).Error("Error nacking message")
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		entry.WithError(ackErr).Error("Error acking message")
	}
}
