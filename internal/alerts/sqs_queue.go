package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/mindhaven/wellness-platform/internal/escalation"
)

// SQSQueue implements QueueClient backed by AWS/LocalStack SQS. Tier and user
// are carried as message attributes so operators can inspect or redrive the
// queue without decoding bodies.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSQueue creates a queue wrapper around the provided SQS client.
func NewSQSQueue(client *sqs.Client, queueURL string) *SQSQueue {
	if client == nil {
		panic("alerts: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("alerts: SQS queueURL cannot be empty")
	}
	return &SQSQueue{
		client:   client,
		queueURL: queueURL,
	}
}

func (q *SQSQueue) Send(ctx context.Context, task escalation.AlertTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("alerts: encode alert task: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"tier": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(task.Tier)),
			},
			"user_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(task.UserID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("alerts: failed to send alert task %s: %w", task.EventID, err)
	}
	return nil
}

func (q *SQSQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(waitSeconds),
	}

	output, err := q.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("alerts: failed to receive alert tasks: %w", err)
	}

	messages := make([]QueueMessage, 0, len(output.Messages))
	for _, msg := range output.Messages {
		messages = append(messages, QueueMessage{
			ID:            aws.ToString(msg.MessageId),
			Body:          aws.ToString(msg.Body),
			ReceiptHandle: aws.ToString(msg.ReceiptHandle),
		})
	}

	return messages, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return nil
	}

	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("alerts: failed to delete alert task: %w", err)
	}
	return nil
}

var _ QueueClient = (*SQSQueue)(nil)
var _ QueueClient = (*MemoryQueue)(nil)
