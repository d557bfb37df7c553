package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// QueueMessage is a received message and the handle needed to delete it.
type QueueMessage struct {
	Body          string
	ReceiptHandle string
}

// SQSClient sends, receives and deletes messages on a single queue.
type SQSClient struct {
	client   sqsAPI
	queueURL string
}

// NewSQSClient creates a new SQS client for the given queue URL
func NewSQSClient(cfg sdkaws.Config, queueURL string) *SQSClient {
	return &SQSClient{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}
}

// SendMessage sends a single message to the queue
func (c *SQSClient) SendMessage(ctx context.Context, body string) error {
	_, err := c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &c.queueURL,
		MessageBody: &body,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ReceiveMessages long-polls for up to max messages. Received messages stay
// invisible for the visibility timeout and must be deleted once handled.
func (c *SQSClient) ReceiveMessages(ctx context.Context, max int32, waitSeconds int32) ([]QueueMessage, error) {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &c.queueURL,
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     waitSeconds,
		VisibilityTimeout:   30,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]QueueMessage, 0, len(result.Messages))
	for _, msg := range result.Messages {
		if msg.Body == nil || msg.ReceiptHandle == nil {
			continue
		}
		messages = append(messages, QueueMessage{Body: *msg.Body, ReceiptHandle: *msg.ReceiptHandle})
	}
	return messages, nil
}

// DeleteMessage removes a handled message from the queue
func (c *SQSClient) DeleteMessage(ctx context.Context, receiptHandle string) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: &receiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
