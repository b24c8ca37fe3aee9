package job

import (
	"context"
	"fmt"
	"log"

	"anoa.com/safereport/pkg/apperror"
	"github.com/robfig/cron/v3"
)

// Info describes a registered job.
type Info struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

// Register adds job and schedules it when it has a schedule.
func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		log.Printf("📝 [%s] Registered as on-demand job", job.Name())
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(context.Background(), job) }); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}
	log.Printf("📅 [%s] Scheduled with cron: %s", job.Name(), schedule)
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	log.Printf("🤖 [%s] Starting scheduled job...", job.Name())
	if err := job.Execute(ctx); err != nil {
		log.Printf("❌ [%s] Job failed: %v", job.Name(), err)
		return
	}
	log.Printf("✅ [%s] Job completed successfully", job.Name())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Job scheduler started with %d registered jobs", len(s.jobs))
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Job scheduler stopped")
}

// RunByName runs a registered job immediately on the caller's goroutine.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			log.Printf("🎯 [%s] Running on-demand execution...", name)
			if err := job.Execute(ctx); err != nil {
				log.Printf("❌ [%s] On-demand run failed: %v", name, err)
				return fmt.Errorf("job %s failed: %w", name, err)
			}
			log.Printf("✅ [%s] On-demand run completed", name)
			return nil
		}
	}
	return fmt.Errorf("job %q not found: %w", name, apperror.ErrNotFound)
}

func (s *Scheduler) Registered() []Info {
	jobs := make([]Info, len(s.jobs))
	for i, job := range s.jobs {
		jobs[i] = Info{Name: job.Name(), Schedule: job.Schedule()}
	}
	return jobs
}
