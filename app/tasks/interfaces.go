package tasks

import (
	"context"

	"github.com/lysyi3m/guide-tools/app/stats"
)

// TaskSchedulerInterface is the scheduler surface used by the serve command.
//
//	scheduler := NewScheduler(pipeline, interval, workers)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Refresh() []TaskType
}

// Pipeline is the build work the refresh tasks run.
type Pipeline interface {
	Stats(ctx context.Context) (stats.Table, error)
	Feed(ctx context.Context) (string, error)
}
