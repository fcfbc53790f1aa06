// Package alerts implements the durable alert dispatch pipeline: an outbox
// row is written for each emergency alert, a deliverer publishes pending rows
// to a queue, and a worker consumes the queue and drives the gateway.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/wellness-platform/internal/escalation"
)

// QueueClient carries alert tasks between the API process and the alert
// worker. Send accepts the task itself so every implementation publishes the
// same wire shape; Receive hands back the raw body because a consumer must be
// able to see (and discard) payloads that no longer decode.
type QueueClient interface {
	Send(ctx context.Context, task escalation.AlertTask) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// QueueMessage is one received alert task, still encoded.
type QueueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// MemoryQueue is a QueueClient backed by an in-memory buffered channel. It is
// used for local development and tests when USE_MEMORY_QUEUE is set.
type MemoryQueue struct {
	ch chan QueueMessage
}

// NewMemoryQueue creates a MemoryQueue with the provided buffer capacity.
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{
		ch: make(chan QueueMessage, buffer),
	}
}

// Send enqueues a task or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, task escalation.AlertTask) error {
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("alerts: encode alert task: %w", err)
	}
	msg := QueueMessage{
		ID:            uuid.NewString(),
		Body:          string(body),
		ReceiptHandle: uuid.NewString(),
	}

	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available, ctx is done, or waitSeconds elapses.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if maxMessages <= 0 {
		maxMessages = 1
	}

	var timer *time.Timer
	if waitSeconds > 0 {
		timer = time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
	}

	if timer == nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg := <-q.ch:
			return q.collect(ctx, msg, maxMessages), nil
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, nil
	case msg := <-q.ch:
		return q.collect(ctx, msg, maxMessages), nil
	}
}

// Delete is a no-op for the in-memory queue.
func (q *MemoryQueue) Delete(_ context.Context, _ string) error {
	return nil
}

func (q *MemoryQueue) collect(ctx context.Context, first QueueMessage, max int) []QueueMessage {
	messages := make([]QueueMessage, 0, max)
	messages = append(messages, first)

	for len(messages) < max {
		select {
		case <-ctx.Done():
			return messages
		case msg := <-q.ch:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
	return messages
}
