package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"legalai-assistant/internal/model"
)

type AuditPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewAuditPublisher(conn *amqp.Connection, queueName string) *AuditPublisher {
	return &AuditPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *AuditPublisher) Publish(ctx context.Context, record model.AuditRecord) error {
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

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit payload failed: %w", err)
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
		return fmt.Errorf("publish audit record failed: %w", err)
	}
	return nil
}
