package queue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer is what the API needs from the queue.
type Enqueuer interface {
	EnqueueSubmission(ctx context.Context, payload SubmissionPayload) error
	EnqueueArchiveCV(ctx context.Context, payload ArchiveCVPayload) error
}

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(redisOpt asynq.RedisClientOpt, queueName string) *Client {
	return &Client{
		client: asynq.NewClient(redisOpt),
		queue:  queueName,
	}
}

func (c *Client) EnqueueSubmission(ctx context.Context, payload SubmissionPayload) error {
	task, err := NewSubmissionTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(
		ctx,
		task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	)
	return err
}

func (c *Client) EnqueueArchiveCV(ctx context.Context, payload ArchiveCVPayload) error {
	task, err := NewArchiveCVTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(
		ctx,
		task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(3*time.Minute),
		asynq.TaskID("archive-cv:"+payload.ApplicationID),
	)
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Discard drops every task. The API uses it when the queue is disabled.
type Discard struct{}

func (Discard) EnqueueSubmission(context.Context, SubmissionPayload) error { return nil }
func (Discard) EnqueueArchiveCV(context.Context, ArchiveCVPayload) error   { return nil }
