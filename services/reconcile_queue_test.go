package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
	"github.com/yashrajoria/storefront-service/services"
)

type fakeSQSClient struct {
	inbox   []aws_pkg.QueueMessage
	deleted []string
}

func (c *fakeSQSClient) SendMessage(_ context.Context, body string) error {
	c.inbox = append(c.inbox, aws_pkg.QueueMessage{Body: body, ReceiptHandle: "rh-" + body[len(body)-4:]})
	return nil
}

func (c *fakeSQSClient) ReceiveMessages(_ context.Context, max int32, _ int32) ([]aws_pkg.QueueMessage, error) {
	n := int(max)
	if n > len(c.inbox) {
		n = len(c.inbox)
	}
	out := c.inbox[:n]
	c.inbox = c.inbox[n:]
	return out, nil
}

func (c *fakeSQSClient) DeleteMessage(_ context.Context, receiptHandle string) error {
	c.deleted = append(c.deleted, receiptHandle)
	return nil
}

func TestSQSQueue_RoundTrip(t *testing.T) {
	client := &fakeSQSClient{}
	q := services.NewSQSQueue(client)
	ctx := context.Background()
	job := services.ReconcileJob{UserID: "u1", OrderID: "o1", Attempts: 3, EnqueuedAt: time.Now().UTC().Truncate(time.Second)}

	require.NoError(t, q.Enqueue(ctx, job))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(client.inbox[0].Body), &decoded))
	assert.Equal(t, "o1", decoded["order_id"])

	jobs, err := q.Receive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job, jobs[0].Job)
	assert.Empty(t, client.deleted)

	require.NoError(t, jobs[0].Ack(ctx))
	assert.Len(t, client.deleted, 1)
}

func TestSQSQueue_DropsUnreadableMessages(t *testing.T) {
	client := &fakeSQSClient{inbox: []aws_pkg.QueueMessage{{Body: "not json", ReceiptHandle: "bad"}}}
	q := services.NewSQSQueue(client)

	jobs, err := q.Receive(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, []string{"bad"}, client.deleted)
}

func TestMemoryQueue_ReceiveRemoves(t *testing.T) {
	q := services.NewMemoryQueue()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, services.ReconcileJob{OrderID: id}))
	}

	jobs, err := q.Receive(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Job.OrderID)
	assert.Equal(t, 1, q.Len())
}
