package common

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Exchange string

type Queue string

type BindingKey string

type MessageProducer interface {
	Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error
}

type MessageConsumer interface {
	Consume(key BindingKey, exchange Exchange, queue Queue) (<-chan amqp.Delivery, error)
}

// consumerPrefetch bounds the unacked deliveries a consumer holds at once.
const consumerPrefetch = 1

// MessageBroker publishes on one channel and gives consumers a channel of their own,
// so a slow consumer never holds up publishers.
type MessageBroker struct {
	conn *amqp.Connection
	pub  *amqp.Channel

	mu   sync.Mutex
	subs []*amqp.Channel
}

func NewMessageBroker(URI string) (*MessageBroker, error) {
	conn, err := amqp.Dial(URI)
	if err != nil {
		return nil, fmt.Errorf("could not connect to AMQP: %w", err)
	}

	pub, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	return &MessageBroker{conn: conn, pub: pub}, nil
}

func AMQPURI(user, password, host, port string) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", user, password, host, port)
}

// Close closes every channel and then the connection.
func (mb *MessageBroker) Close() error {
	mb.mu.Lock()
	for _, ch := range mb.subs {
		ch.Close()
	}
	mb.subs = nil
	mb.mu.Unlock()

	if err := mb.pub.Close(); err != nil {
		return err
	}

	return mb.conn.Close()
}

func (mb *MessageBroker) declareBinding(exchange Exchange, queue Queue, key BindingKey) error {
	err := mb.pub.ExchangeDeclare(string(exchange), amqp.ExchangeDirect, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("could not declare exchange %s: %w", exchange, err)
	}

	_, err = mb.pub.QueueDeclare(string(queue), true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("could not declare queue %s: %w", queue, err)
	}

	return mb.pub.QueueBind(string(queue), string(key), string(exchange), false, nil)
}

func (mb *MessageBroker) Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error {
	err := mb.pub.PublishWithContext(ctx, string(exchange), string(key), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         msg,
	})
	if err != nil {
		return fmt.Errorf("could not publish message: %w", err)
	}

	return nil
}

// Consume opens a dedicated channel and starts a manually acked consumer on queue.
func (mb *MessageBroker) Consume(key BindingKey, exchange Exchange, queue Queue) (<-chan amqp.Delivery, error) {
	ch, err := mb.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("could not open consumer channel: %w", err)
	}

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("could not set prefetch: %w", err)
	}

	tag := fmt.Sprintf("%s.%s", exchange, key)
	msgs, err := ch.Consume(string(queue), tag, false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("could not consume message: %w", err)
	}

	mb.mu.Lock()
	mb.subs = append(mb.subs, ch)
	mb.mu.Unlock()

	return msgs, nil
}
