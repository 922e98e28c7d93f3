package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

var ErrTaskPending = errors.New("task of this type is already queued")

const taskTimeout = 5 * time.Minute

type Scheduler struct {
	pipeline    Pipeline
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu      sync.Mutex
	pending map[TaskType]bool
}

func NewScheduler(pipeline Pipeline, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		pipeline:    pipeline,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 16),
		pending:     make(map[TaskType]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Refresh()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Refresh()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// EnqueueTask queues task for the workers. A task whose type is already
// queued and not yet picked up is rejected with ErrTaskPending.
func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[task.GetType()] {
		return ErrTaskPending
	}

	select {
	case s.taskQueue <- task:
		s.pending[task.GetType()] = true
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Refresh queues a stats and a feed refresh and returns the task types that
// were queued. Types already waiting in the queue are skipped.
func (s *Scheduler) Refresh() []TaskType {
	queued := []TaskType{}
	for _, task := range []TaskInterface{
		NewRefreshStatsTask(s.pipeline),
		NewRefreshFeedTask(s.pipeline),
	} {
		err := s.EnqueueTask(task)
		switch {
		case errors.Is(err, ErrTaskPending):
			slog.Debug("Task still queued, skipping", "type", task.GetType())
		case err != nil:
			slog.Warn("Failed to enqueue task", "type", task.GetType(), "error", err)
		default:
			queued = append(queued, task.GetType())
		}
	}
	return queued
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.mu.Lock()
			delete(s.pending, task.GetType())
			s.mu.Unlock()

			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

// executeTask runs task once. Failures are logged; a later tick enqueues a
// fresh task of the same type.
func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"duration", task.GetDuration(),
			"error", err)
	}
}
