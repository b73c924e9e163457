package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"gnosis-influencer/internal/model"
	"gnosis-influencer/internal/repository"
)

// ConversationTouchWorker consumes reply.appended events and refreshes
// the conversation's last_update, keeping that write off the request
// path.
type ConversationTouchWorker struct {
	conn      *amqp.Connection
	repo      *repository.ConversationRepository
	queueName string
	log       *logrus.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConversationTouchWorker(
	conn *amqp.Connection,
	repo *repository.ConversationRepository,
	queueName string,
	log *logrus.Logger,
) *ConversationTouchWorker {
	if log == nil {
		log = logrus.New()
	}
	return &ConversationTouchWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log,
	}
}

func (w *ConversationTouchWorker) Start(ctx context.Context) error {
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

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event model.ReplyAppendedEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					w.log.WithError(err).Warn("worker decode reply event failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Touch(event.ConversationID); err != nil {
					w.log.WithError(err).
						WithField("conversation_id", event.ConversationID).
						Warn("worker touch conversation failed")
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ConversationTouchWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
