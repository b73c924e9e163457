package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"gnosis-influencer/internal/model"
)

// ReplyEventPublisher pushes reply.appended events onto a durable queue
// after the message batch commits.
type ReplyEventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewReplyEventPublisher(conn *amqp.Connection, queueName string) *ReplyEventPublisher {
	return &ReplyEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ReplyEventPublisher) Publish(ctx context.Context, event model.ReplyAppendedEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal reply event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish reply event failed: %w", err)
	}
	return nil
}
