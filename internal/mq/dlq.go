package mq

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DLQExchangeName = "events.dlq"
)

// DeadLetterPublisher is what the consumer needs to park a permanently
// failing message.
type DeadLetterPublisher interface {
	Publish(routingKey string, payload []byte, cause error) error
}

// DeadLetterer parks messages that will never process successfully, so the
// main queues keep moving and the payloads stay inspectable. One instance
// is shared by all consumers.
type DeadLetterer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *zap.Logger
}

func NewDeadLetterer(url string, logger *zap.Logger) (*DeadLetterer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open DLQ channel: %w", err)
	}

	if err := DeclareDLQExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	return &DeadLetterer{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

// DeclareDLQExchange declares the dead letter exchange.
func DeclareDLQExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		DLQExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

// Bind declares the dead letter queue for one routing key and binds it to
// the DLQ exchange.
func (d *DeadLetterer) Bind(routingKey string) error {
	queueName := fmt.Sprintf("%s.dlq", routingKey)

	q, err := d.channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ queue %s: %w", queueName, err)
	}

	err = d.channel.QueueBind(
		q.Name,
		routingKey,
		DLQExchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind DLQ queue %s: %w", queueName, err)
	}

	d.logger.Info("Dead letter queue bound",
		zap.String("queue", queueName),
		zap.String("routing_key", routingKey),
	)
	return nil
}

// Publish parks a failed message on the dead letter exchange with the
// failure recorded in the headers.
func (d *DeadLetterer) Publish(routingKey string, payload []byte, cause error) error {
	headers := amqp091.Table{
		"x-original-error": cause.Error(),
		"x-failed-at":      "milestone-engine",
	}

	return d.channel.Publish(
		DLQExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp091.Persistent,
			Headers:      headers,
		},
	)
}

func (d *DeadLetterer) Close() {
	if d.channel != nil {
		_ = d.channel.Close()
	}
	if d.conn != nil {
		_ = d.conn.Close()
	}
}
