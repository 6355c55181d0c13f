package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/leadforge/leadscreen/internal/domain/model"
	"github.com/leadforge/leadscreen/internal/mocks"
)

// mockJobStore is a func-field mock of core.JobStore.
type mockJobStore struct {
	mu         sync.Mutex
	created    []*model.Job
	createFunc func(ctx context.Context, job *model.Job) error
	getFunc    func(ctx context.Context, id string) (*model.Job, error)
	updateFunc func(ctx context.Context, job *model.Job) error
}

func (m *mockJobStore) Create(ctx context.Context, job *model.Job) error {
	m.mu.Lock()
	m.created = append(m.created, job)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, job)
	}
	return nil
}

func (m *mockJobStore) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, model.ErrJobNotFound
}

func (m *mockJobStore) Update(ctx context.Context, job *model.Job) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, job)
	}
	return nil
}

// mockRunner records jobs it ran and signals completion on done.
type mockRunner struct {
	mu      sync.Mutex
	ran     []string
	runFunc func(ctx context.Context, job *model.Job) error
	done    chan string
}

func newMockRunner() *mockRunner {
	return &mockRunner{done: make(chan string, 8)}
}

func (m *mockRunner) Run(ctx context.Context, job *model.Job) error {
	m.mu.Lock()
	m.ran = append(m.ran, job.ID)
	m.mu.Unlock()

	var err error
	if m.runFunc != nil {
		err = m.runFunc(ctx, job)
	}
	m.done <- job.ID
	return err
}

func (m *mockRunner) ranJobs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ran...)
}

// mockCancelFlag is an in-memory core.CancelFlag.
type mockCancelFlag struct {
	mu        sync.Mutex
	requested map[string]bool
}

func (m *mockCancelFlag) RequestCancel(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.requested == nil {
		m.requested = make(map[string]bool)
	}
	m.requested[jobID] = true
	return nil
}

func (m *mockCancelFlag) IsCancelRequested(_ context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requested[jobID], nil
}

type mockSnapshotStore struct {
	snapshot *model.ProgressSnapshot
	err      error
}

func (m *mockSnapshotStore) LatestSnapshot(_ context.Context, _ string) (*model.ProgressSnapshot, error) {
	return m.snapshot, m.err
}

func newTestService(t *testing.T, opts ScreeningServiceOptions) *ScreeningService {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	svc, err := NewScreeningService(opts)
	require.NoError(t, err)
	return svc
}

func waitForJob(t *testing.T, done <-chan string) string {
	t.Helper()
	select {
	case id := <-done:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job to run")
		return ""
	}
}

func TestNewScreeningServiceRequiresDependencies(t *testing.T) {
	runner := newMockRunner()
	flag := &mockCancelFlag{}
	store := &mockJobStore{}

	_, err := NewScreeningService(ScreeningServiceOptions{Runner: runner, Cancel: flag})
	assert.Error(t, err)

	_, err = NewScreeningService(ScreeningServiceOptions{Jobs: store, Cancel: flag})
	assert.Error(t, err)

	_, err = NewScreeningService(ScreeningServiceOptions{Jobs: store, Runner: runner})
	assert.Error(t, err)

	_, err = NewScreeningService(ScreeningServiceOptions{Jobs: store, Runner: runner, Cancel: flag})
	assert.NoError(t, err)
}

func TestStartJobCreatesAndRuns(t *testing.T) {
	store := &mockJobStore{}
	runner := newMockRunner()
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   store,
		Runner: runner,
		Cancel: &mockCancelFlag{},
	})

	job, err := svc.StartJob(context.Background(), "script-1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "script-1", job.ScriptID)

	ran := waitForJob(t, runner.done)
	assert.Equal(t, job.ID, ran)

	store.mu.Lock()
	created := len(store.created)
	store.mu.Unlock()
	assert.Equal(t, 1, created)
}

func TestStartJobValidatesInput(t *testing.T) {
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   &mockJobStore{},
		Runner: newMockRunner(),
		Cancel: &mockCancelFlag{},
	})

	_, err := svc.StartJob(context.Background(), "", nil)
	assert.Error(t, err)

	zero := 0
	_, err = svc.StartJob(context.Background(), "script-1", &zero)
	assert.Error(t, err)
}

func TestStartJobCreateFailureDoesNotRun(t *testing.T) {
	store := &mockJobStore{
		createFunc: func(context.Context, *model.Job) error {
			return errors.New("insert failed")
		},
	}
	runner := newMockRunner()
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   store,
		Runner: runner,
		Cancel: &mockCancelFlag{},
	})

	_, err := svc.StartJob(context.Background(), "script-1", nil)
	require.Error(t, err)

	select {
	case <-runner.done:
		t.Fatal("runner should not have been invoked")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartJobSurvivesCallerContextCancel(t *testing.T) {
	runner := newMockRunner()
	started := make(chan struct{})
	runner.runFunc = func(ctx context.Context, _ *model.Job) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			return nil
		}
	}
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   &mockJobStore{},
		Runner: runner,
		Cancel: &mockCancelFlag{},
	})

	callerCtx, cancel := context.WithCancel(context.Background())
	_, err := svc.StartJob(callerCtx, "script-1", nil)
	require.NoError(t, err)

	<-started
	cancel()

	waitForJob(t, runner.done)
	// The run completed on its own timer, unaffected by the caller cancel.
	assert.Len(t, runner.ranJobs(), 1)
}

func TestCancelSetsFlagForRunningJob(t *testing.T) {
	flag := &mockCancelFlag{}
	job := model.NewJob("script-1", nil)
	job.Status = model.JobStatusRunning
	store := &mockJobStore{
		getFunc: func(_ context.Context, id string) (*model.Job, error) {
			if id == job.ID {
				return job, nil
			}
			return nil, model.ErrJobNotFound
		},
	}
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   store,
		Runner: newMockRunner(),
		Cancel: flag,
	})

	require.NoError(t, svc.Cancel(context.Background(), job.ID))

	requested, err := flag.IsCancelRequested(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, requested)
}

func TestCancelRejectsTerminalAndMissingJobs(t *testing.T) {
	done := model.NewJob("script-1", nil)
	done.Status = model.JobStatusCompleted
	store := &mockJobStore{
		getFunc: func(_ context.Context, id string) (*model.Job, error) {
			if id == done.ID {
				return done, nil
			}
			return nil, model.ErrJobNotFound
		},
	}
	flag := &mockCancelFlag{}
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   store,
		Runner: newMockRunner(),
		Cancel: flag,
	})

	err := svc.Cancel(context.Background(), done.ID)
	assert.ErrorContains(t, err, "already completed")

	err = svc.Cancel(context.Background(), "missing-id")
	assert.ErrorIs(t, err, model.ErrJobNotFound)

	assert.Empty(t, flag.requested)
}

func TestCancelPropagatesFlagError(t *testing.T) {
	ctrl := gomock.NewController(t)

	job := model.NewJob("script-1", nil)
	job.Status = model.JobStatusRunning

	jobs := mocks.NewMockJobStore(ctrl)
	jobs.EXPECT().GetByID(gomock.Any(), job.ID).Return(job, nil)

	flag := mocks.NewMockCancelFlag(ctrl)
	flag.EXPECT().RequestCancel(gomock.Any(), job.ID).Return(errors.New("redis down"))

	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   jobs,
		Runner: newMockRunner(),
		Cancel: flag,
	})

	err := svc.Cancel(context.Background(), job.ID)
	assert.ErrorContains(t, err, "request cancel")
}

func TestStatusIncludesLatestSnapshot(t *testing.T) {
	job := model.NewJob("script-1", nil)
	job.Status = model.JobStatusRunning
	store := &mockJobStore{
		getFunc: func(context.Context, string) (*model.Job, error) {
			return job, nil
		},
	}
	snapshot := &model.ProgressSnapshot{JobID: job.ID, RowsProcessed: 250}
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:      store,
		Runner:    newMockRunner(),
		Cancel:    &mockCancelFlag{},
		Snapshots: &mockSnapshotStore{snapshot: snapshot},
	})

	view, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, view.Job.ID)
	require.NotNil(t, view.Progress)
	assert.Equal(t, 250, view.Progress.RowsProcessed)
}

func TestStatusDegradesOnSnapshotError(t *testing.T) {
	job := model.NewJob("script-1", nil)
	store := &mockJobStore{
		getFunc: func(context.Context, string) (*model.Job, error) {
			return job, nil
		},
	}
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:      store,
		Runner:    newMockRunner(),
		Cancel:    &mockCancelFlag{},
		Snapshots: &mockSnapshotStore{err: errors.New("redis down")},
	})

	view, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Progress)
}

func TestShutdownDrainsRunningJobs(t *testing.T) {
	runner := newMockRunner()
	block := make(chan struct{})
	runner.runFunc = func(ctx context.Context, _ *model.Job) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-block:
			return nil
		}
	}
	svc := newTestService(t, ScreeningServiceOptions{
		Jobs:   &mockJobStore{},
		Runner: runner,
		Cancel: &mockCancelFlag{},
	})

	job, err := svc.StartJob(context.Background(), "script-1", nil)
	require.NoError(t, err)
	assert.Contains(t, svc.RunningJobs(), job.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	waitForJob(t, runner.done)
	assert.Empty(t, svc.RunningJobs())

	_, err = svc.StartJob(context.Background(), "script-2", nil)
	assert.ErrorIs(t, err, ErrServiceClosed)
}
