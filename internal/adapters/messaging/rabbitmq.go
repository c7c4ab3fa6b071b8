package messaging

import (
	"fmt"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

// RabbitMQBroker publishes appointment events to a durable queue on the
// default exchange.
type RabbitMQBroker struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
	cb        *gobreaker.CircuitBreaker
}

func NewRabbitMQBroker(amqpURL, queueName string) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := openQueue(conn, queueName)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMQBroker{
		conn:      conn,
		ch:        ch,
		queueName: queueName,
		cb:        config.NewCircuitBreaker(config.BreakerRabbitMQ),
	}, nil
}

// openQueue opens a channel and makes sure the durable queue exists.
func openQueue(conn *amqp.Connection, queueName string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	return ch, nil
}

// IsConnected reports whether the AMQP connection and channel are still open
// and the publish breaker is not open.
func (rmq *RabbitMQBroker) IsConnected() bool {
	if rmq.conn == nil || rmq.conn.IsClosed() || rmq.ch == nil || rmq.ch.IsClosed() {
		return false
	}
	return rmq.cb.State() != gobreaker.StateOpen
}

func (rmq *RabbitMQBroker) Close() error {
	if rmq.ch != nil {
		if err := rmq.ch.Close(); err != nil {
			return err
		}
	}
	if rmq.conn != nil {
		return rmq.conn.Close()
	}
	return nil
}
