package data

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadscreen/internal/domain/model"
	"github.com/leadforge/leadscreen/internal/testutil"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestRedisEventBus_PublishAndLatestSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	defer client.Close()

	bus := NewRedisEventBus(client)
	ctx := context.Background()

	sub := client.Subscribe(ctx, progressChannelPrefix+"job-1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	snapshot := &model.ProgressSnapshot{
		JobID:         "job-1",
		Status:        model.JobStatusRunning,
		Percent:       25,
		RowsTotal:     1000,
		RowsProcessed: 250,
		BatchIndex:    1,
		BatchTotal:    4,
		Message:       "processed batch 1 of 4",
		Timestamp:     time.Now().UTC(),
	}
	require.NoError(t, bus.PublishProgress(ctx, snapshot))

	// Live subscriber sees the published snapshot.
	msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(msgCtx)
	require.NoError(t, err)

	var published model.ProgressSnapshot
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &published))
	assert.Equal(t, "job-1", published.JobID)
	assert.InDelta(t, 25.0, published.Percent, 0.001)

	// Polling readers see the stored latest snapshot.
	latest, err := bus.LatestSnapshot(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 250, latest.RowsProcessed)
	assert.Equal(t, "processed batch 1 of 4", latest.Message)
}

func TestRedisEventBus_LatestSnapshotMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	defer client.Close()

	bus := NewRedisEventBus(client)
	latest, err := bus.LatestSnapshot(context.Background(), "job-unknown")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRedisEventBus_CancelFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	defer client.Close()

	bus := NewRedisEventBus(client)
	ctx := context.Background()

	requested, err := bus.IsCancelRequested(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, requested)

	require.NoError(t, bus.RequestCancel(ctx, "job-1"))

	requested, err = bus.IsCancelRequested(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, requested)

	// Other jobs are unaffected.
	requested, err = bus.IsCancelRequested(ctx, "job-2")
	require.NoError(t, err)
	assert.False(t, requested)
}

func TestRedisEventBus_PublishValidation(t *testing.T) {
	bus := NewRedisEventBus(nil)

	err := bus.PublishProgress(context.Background(), nil)
	require.Error(t, err)

	err = bus.PublishProgress(context.Background(), &model.ProgressSnapshot{})
	require.Error(t, err)
}
