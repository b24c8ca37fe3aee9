package job

import "context"

// Job is a unit of background work the scheduler can run.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Schedule is a robfig/cron spec such as "@daily". An empty schedule
	// registers the job for on-demand runs only.
	Schedule() string

	Execute(ctx context.Context) error
}
