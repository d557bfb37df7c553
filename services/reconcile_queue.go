package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
)

// ReconcileJob is a checkout whose order exists but whose account was not
// yet finalized.
type ReconcileJob struct {
	UserID     string    `json:"user_id"`
	OrderID    string    `json:"order_id"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ReceivedJob is a dequeued job. Ack must be called once the job succeeded.
type ReceivedJob struct {
	Job ReconcileJob
	Ack func(ctx context.Context) error
}

type ReconciliationQueue interface {
	Enqueue(ctx context.Context, job ReconcileJob) error
	Receive(ctx context.Context, max int) ([]ReceivedJob, error)
}

// MemoryQueue is a process-local queue. Receive removes jobs, so a failed
// job must be enqueued again.
type MemoryQueue struct {
	mu   sync.Mutex
	jobs []ReconcileJob
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job ReconcileJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *MemoryQueue) Receive(_ context.Context, max int) ([]ReceivedJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if max <= 0 || max > len(q.jobs) {
		max = len(q.jobs)
	}
	out := make([]ReceivedJob, 0, max)
	for _, job := range q.jobs[:max] {
		out = append(out, ReceivedJob{Job: job, Ack: func(context.Context) error { return nil }})
	}
	q.jobs = append([]ReconcileJob{}, q.jobs[max:]...)
	return out, nil
}

func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// sqsQueueClient is the part of aws_pkg.SQSClient the queue uses.
type sqsQueueClient interface {
	SendMessage(ctx context.Context, body string) error
	ReceiveMessages(ctx context.Context, max int32, waitSeconds int32) ([]aws_pkg.QueueMessage, error)
	DeleteMessage(ctx context.Context, receiptHandle string) error
}

// SQSQueue keeps reconcile jobs on SQS. A job is deleted only when acked.
type SQSQueue struct {
	client sqsQueueClient
}

func NewSQSQueue(client sqsQueueClient) *SQSQueue {
	return &SQSQueue{client: client}
}

func (q *SQSQueue) Enqueue(ctx context.Context, job ReconcileJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal reconcile job: %w", err)
	}
	return q.client.SendMessage(ctx, string(body))
}

func (q *SQSQueue) Receive(ctx context.Context, max int) ([]ReceivedJob, error) {
	if max <= 0 || max > 10 {
		max = 10
	}
	msgs, err := q.client.ReceiveMessages(ctx, int32(max), 1)
	if err != nil {
		return nil, err
	}

	out := make([]ReceivedJob, 0, len(msgs))
	for _, msg := range msgs {
		var job ReconcileJob
		handle := msg.ReceiptHandle
		ack := func(ctx context.Context) error { return q.client.DeleteMessage(ctx, handle) }
		if err := json.Unmarshal([]byte(msg.Body), &job); err != nil {
			// Unreadable messages would be redelivered forever.
			_ = ack(ctx)
			continue
		}
		out = append(out, ReceivedJob{Job: job, Ack: ack})
	}
	return out, nil
}
