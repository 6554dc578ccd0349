package common

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Exchange string

type Queue string

type BindingKey string

type MessageProducer interface {
	Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error
}

type MessageConsumer interface {
	Consume(queue Queue, consumer string) (<-chan amqp.Delivery, error)
}

const (
	BlogExchange   Exchange   = "blog_exchange"
	PostCreatedKey BindingKey = "blog.post.created"
	PostUpdatedKey BindingKey = "blog.post.updated"
	PostDeletedKey BindingKey = "blog.post.deleted"
)

const PostChangedConsumer = "blog_cache_invalidator"

var postChangedKeys = []BindingKey{PostCreatedKey, PostUpdatedKey, PostDeletedKey}

type MessageBroker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewMessageBroker(URI string) (*MessageBroker, error) {
	conn, ch, err := connectAMQP(URI)
	if err != nil {
		return nil, err
	}

	return &MessageBroker{
		conn: conn,
		ch:   ch,
	}, nil
}

func connectAMQP(URI string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(URI)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	return conn, ch, nil
}

// Close closes the connection and channel of the message broker.
func (mb *MessageBroker) Close() error {
	err := mb.ch.Close()
	if err != nil {
		return err
	}

	return mb.conn.Close()
}

// SetupBlogExchange declares the blog exchange that post lifecycle events are published to.
func SetupBlogExchange(mb *MessageBroker) error {
	return mb.ch.ExchangeDeclare(string(BlogExchange), "direct", true, false, false, false, nil)
}

// DeclarePostChangedQueue declares a server-named queue owned by this connection and
// binds it to every post lifecycle key. Each instance gets its own copy of every event;
// the queue is removed when the connection closes.
func DeclarePostChangedQueue(mb *MessageBroker) (Queue, error) {
	q, err := mb.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", err
	}

	for _, key := range postChangedKeys {
		err = mb.ch.QueueBind(q.Name, string(key), string(BlogExchange), false, nil)
		if err != nil {
			return "", err
		}
	}

	return Queue(q.Name), nil
}

func (mb *MessageBroker) Publish(ctx context.Context, msg []byte, key BindingKey, exchange Exchange) error {
	err := mb.ch.PublishWithContext(ctx, string(exchange), string(key), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        msg,
	})
	if err != nil {
		return fmt.Errorf("could not publish message: %w", err)
	}

	return nil
}

func (mb *MessageBroker) Consume(queue Queue, consumer string) (<-chan amqp.Delivery, error) {
	msgs, err := mb.ch.Consume(string(queue), consumer, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("could not consume message: %w", err)
	}

	return msgs, nil
}
