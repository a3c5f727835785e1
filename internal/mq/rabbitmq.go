package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InitQueues declares the activity queue together with its dead-letter route.
func InitQueues(mqConn *amqp.Connection) error {
	ch, err := NewChannel(mqConn)
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := SetupDeadLetter(ch, ActivityDeadExchange, ActivityDeadQueue, ActivityDeadRoutingKey); err != nil {
		return fmt.Errorf("declare dead-letter route: %w", err)
	}
	args := amqp.Table{
		"x-dead-letter-exchange":    ActivityDeadExchange,
		"x-dead-letter-routing-key": ActivityDeadRoutingKey,
	}
	if err := SetupImmediateQueue(ch, ActivityQueue, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", ActivityQueue, err)
	}
	return nil
}

func NewMQConn(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	if conn == nil || conn.IsClosed() {
		return nil, ErrNoConnection
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, nil
}

func SetupImmediateQueue(ch *amqp.Channel, queueName string, args amqp.Table) error {
	_, err := ch.QueueDeclare(queueName, true, false, false, false, args)
	return err
}

// SetupDeadLetter declares a direct exchange and a durable queue bound to it,
// where messages nacked without requeue end up for inspection.
func SetupDeadLetter(ch *amqp.Channel, exchangeName, queueName, routingKey string) error {
	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.QueueBind(queueName, routingKey, exchangeName, false, nil)
}
