package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

type Client struct {
	*river.Client[pgx.Tx]
	maxAttempts int
}

// NewClient builds the queue client and registers the extraction worker.
// maxAttempts bounds retries per job and must match the worker's retry
// policy.
func NewClient(ctx context.Context, pool *pgxpool.Pool, worker *ExtractWorker, maxWorkers, maxAttempts int) (*Client, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, worker)

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			DefaultQueue: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient, maxAttempts: maxAttempts}, nil
}

// NewInsertOnlyClient builds a queue client that can enqueue jobs but runs
// no workers. Start must not be called on it.
func NewInsertOnlyClient(pool *pgxpool.Pool, maxAttempts int) (*Client, error) {
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, err
	}
	return &Client{Client: riverClient, maxAttempts: maxAttempts}, nil
}

func (c *Client) InsertJob(ctx context.Context, args ExtractArgs) (int64, error) {
	result, err := c.Insert(ctx, args, &river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: c.maxAttempts,
	})
	if err != nil {
		return 0, err
	}
	return result.Job.ID, nil
}
