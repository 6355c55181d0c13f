package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leadforge/leadscreen/internal/core"
	"github.com/leadforge/leadscreen/internal/domain/model"
)

const (
	progressChannelPrefix = "leadscreen:progress:"
	progressKeyPrefix     = "job:progress:"
	cancelKeyPrefix       = "job:cancel:"

	// snapshotTTL keeps the latest snapshot readable for a while after the
	// job reaches a terminal state.
	snapshotTTL = 24 * time.Hour
	cancelTTL   = 24 * time.Hour
)

// RedisEventBus delivers progress snapshots over Redis and carries the
// cooperative cancellation flag. Each snapshot is published on the job's
// channel for live observers and stored under a key for polling ones.
type RedisEventBus struct {
	client redis.UniversalClient
}

// NewRedisEventBus creates a new RedisEventBus with the given Redis client.
func NewRedisEventBus(client redis.UniversalClient) *RedisEventBus {
	return &RedisEventBus{client: client}
}

var (
	_ core.EventBus   = (*RedisEventBus)(nil)
	_ core.CancelFlag = (*RedisEventBus)(nil)
)

// PublishProgress publishes the snapshot and stores it as the job's latest.
func (b *RedisEventBus) PublishProgress(ctx context.Context, snapshot *model.ProgressSnapshot) error {
	if snapshot == nil || snapshot.JobID == "" {
		return errors.New("snapshot with job id is required")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	pipe := b.client.Pipeline()
	pipe.Publish(ctx, progressChannelPrefix+snapshot.JobID, payload)
	pipe.Set(ctx, progressKeyPrefix+snapshot.JobID, payload, snapshotTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish progress: %w", err)
	}
	return nil
}

// LatestSnapshot returns the job's most recent snapshot, or nil when none
// has been stored.
func (b *RedisEventBus) LatestSnapshot(ctx context.Context, jobID string) (*model.ProgressSnapshot, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}

	payload, err := b.client.Get(ctx, progressKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read latest snapshot: %w", err)
	}

	var snapshot model.ProgressSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// RequestCancel sets the cancellation flag for a job. The engine observes it
// at the next batch boundary.
func (b *RedisEventBus) RequestCancel(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	if err := b.client.Set(ctx, cancelKeyPrefix+jobID, "1", cancelTTL).Err(); err != nil {
		return fmt.Errorf("set cancel flag: %w", err)
	}
	return nil
}

// IsCancelRequested reads the cancellation flag for a job.
func (b *RedisEventBus) IsCancelRequested(ctx context.Context, jobID string) (bool, error) {
	if jobID == "" {
		return false, ErrJobIDRequired
	}
	n, err := b.client.Exists(ctx, cancelKeyPrefix+jobID).Result()
	if err != nil {
		return false, fmt.Errorf("read cancel flag: %w", err)
	}
	return n > 0, nil
}
