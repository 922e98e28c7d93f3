package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/guide-tools/app/stats"
)

type mockPipeline struct {
	mu        sync.Mutex
	statsRuns int
	feedRuns  int
	err       error
}

func (m *mockPipeline) Stats(ctx context.Context) (stats.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsRuns++
	if m.err != nil {
		return nil, m.err
	}
	return stats.Table{"es": {"intro": {Total: 1, Translated: 1, Percentage: 100}}}, nil
}

func (m *mockPipeline) Feed(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedRuns++
	return "tutorials.rss", m.err
}

func (m *mockPipeline) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsRuns, m.feedRuns
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestSchedulerRunsRefreshTasks(t *testing.T) {
	pipeline := &mockPipeline{}
	scheduler := NewScheduler(pipeline, 10*time.Millisecond, 2)

	scheduler.Start()
	waitFor(t, func() bool {
		statsRuns, feedRuns := pipeline.counts()
		return statsRuns >= 2 && feedRuns >= 2
	})
	scheduler.Stop()

	statsRuns, feedRuns := pipeline.counts()
	time.Sleep(30 * time.Millisecond)
	if s, f := pipeline.counts(); s != statsRuns || f != feedRuns {
		t.Error("Expected no task execution after Stop")
	}
}

func TestSchedulerDoesNotRetry(t *testing.T) {
	pipeline := &mockPipeline{err: errors.New("broken catalog")}
	scheduler := NewScheduler(pipeline, time.Hour, 1)

	scheduler.Start()
	waitFor(t, func() bool {
		statsRuns, feedRuns := pipeline.counts()
		return statsRuns >= 1 && feedRuns >= 1
	})
	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()

	if statsRuns, feedRuns := pipeline.counts(); statsRuns != 1 || feedRuns != 1 {
		t.Errorf("Expected each failing task to run once, got stats=%d feed=%d", statsRuns, feedRuns)
	}
}

func TestEnqueueTaskRejectsPendingType(t *testing.T) {
	pipeline := &mockPipeline{}
	scheduler := NewScheduler(pipeline, time.Hour, 1)
	defer scheduler.Stop()

	if err := scheduler.EnqueueTask(NewRefreshStatsTask(pipeline)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := scheduler.EnqueueTask(NewRefreshStatsTask(pipeline)); !errors.Is(err, ErrTaskPending) {
		t.Errorf("Expected ErrTaskPending, got %v", err)
	}
	if err := scheduler.EnqueueTask(NewRefreshFeedTask(pipeline)); err != nil {
		t.Errorf("Expected a different task type to be accepted, got %v", err)
	}
}

func TestEnqueueTaskAfterStop(t *testing.T) {
	pipeline := &mockPipeline{}
	scheduler := NewScheduler(pipeline, time.Hour, 1)
	scheduler.Start()
	scheduler.Stop()

	if err := scheduler.EnqueueTask(NewRefreshFeedTask(pipeline)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRefreshTaskHonoursCancelledContext(t *testing.T) {
	pipeline := &mockPipeline{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewRefreshStatsTask(pipeline).Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if statsRuns, _ := pipeline.counts(); statsRuns != 0 {
		t.Error("Expected pipeline not to run")
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypeRefreshStats)
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before Start")
	}
	task.Start()
	if task.GetID() == "" || task.GetType() != TaskTypeRefreshStats {
		t.Errorf("Unexpected task %+v", task)
	}
}
