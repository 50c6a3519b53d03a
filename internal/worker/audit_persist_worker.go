package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sourcegraph/conc"

	"legalai-assistant/internal/model"
	"legalai-assistant/internal/repository"
)

// AuditPersistWorker drains the audit queue and writes answered-query
// records to mysql. Answering a question never waits on this path.
type AuditPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.AuditRepository
	queueName string

	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewAuditPersistWorker(conn *amqp.Connection, repo *repository.AuditRepository, queueName string) *AuditPersistWorker {
	return &AuditPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *AuditPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Go(func() {
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var record model.AuditRecord
				if err := json.Unmarshal(d.Body, &record); err != nil {
					log.Printf("worker decode audit record failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&record); err != nil {
					log.Printf("worker persist audit record failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	})

	return nil
}

func (w *AuditPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
