package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const actionQueueKey = "pagetable:action_jobs"

// ActionQueueRepoImpl provides a concrete implementation for the ActionQueueRepository interface using Redis Lists.
type ActionQueueRepoImpl struct {
	client *redis.Client
}

// NewActionQueueRepo creates a new instance of ActionQueueRepoImpl.
func NewActionQueueRepo(client *redis.Client) *ActionQueueRepoImpl {
	return &ActionQueueRepoImpl{client: client}
}

// Push adds a job id to the left side of the Redis list (acting as a queue).
func (r *ActionQueueRepoImpl) Push(ctx context.Context, jobID string) error {
	return r.client.LPush(ctx, actionQueueKey, jobID).Err()
}

// Pop removes and returns a job id from the right side of the Redis list.
// It returns redis.Nil when the queue is empty.
func (r *ActionQueueRepoImpl) Pop(ctx context.Context) (string, error) {
	return r.client.RPop(ctx, actionQueueKey).Result()
}

// Size returns the current number of queued job ids.
func (r *ActionQueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, actionQueueKey).Result()
}
