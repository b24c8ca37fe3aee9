package job

import (
	"context"
	"log"
	"time"
)

const (
	ReindexJobName     = "search-reindex"
	StaleDigestJobName = "stale-report-digest"

	// StaleAfter is how long a report may stay pending before it shows up
	// in the digest.
	StaleAfter = 7 * 24 * time.Hour
)

type Reindexer interface {
	ReindexAll(ctx context.Context) (int, error)
}

type StaleCounter interface {
	StaleDigest(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ReindexJob pushes every report to the search index.
type ReindexJob struct {
	reports  Reindexer
	schedule string
}

func NewReindexJob(reports Reindexer) *ReindexJob {
	return &ReindexJob{reports: reports, schedule: "@every 6h"}
}

func (j *ReindexJob) Name() string     { return ReindexJobName }
func (j *ReindexJob) Schedule() string { return j.schedule }

func (j *ReindexJob) Execute(ctx context.Context) error {
	n, err := j.reports.ReindexAll(ctx)
	if err != nil {
		return err
	}
	log.Printf("🔎 [%s] Indexed %d reports", ReindexJobName, n)
	return nil
}

// StaleDigestJob reports how many reports are still pending after a week.
type StaleDigestJob struct {
	reports  StaleCounter
	schedule string
}

func NewStaleDigestJob(reports StaleCounter) *StaleDigestJob {
	return &StaleDigestJob{reports: reports, schedule: "@daily"}
}

func (j *StaleDigestJob) Name() string     { return StaleDigestJobName }
func (j *StaleDigestJob) Schedule() string { return j.schedule }

func (j *StaleDigestJob) Execute(ctx context.Context) error {
	n, err := j.reports.StaleDigest(ctx, StaleAfter)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("⏰ [%s] %d reports pending for more than 7 days", StaleDigestJobName, n)
	}
	return nil
}
