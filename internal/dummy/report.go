package dummy

import (
	"context"
	"sort"
	"time"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/report/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *reportTable
}

var _ repository.ReportRepository = (*reportRepository)(nil)

func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{db: db.reports}
}

// query returns copies sorted newest first.
func (repo *reportRepository) query() []*entity.Report {
	reports := make([]*entity.Report, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		cp := *r
		reports = append(reports, &cp)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].CreatedAt.After(reports[j].CreatedAt) })
	return reports
}

func (repo *reportRepository) Create(_ context.Context, report *entity.Report) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if report.ID == uuid.Nil {
		report.ID = newID()
	}
	if report.Status == "" {
		report.Status = entity.StatusPending
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = stamp()
	}
	report.UpdatedAt = report.CreatedAt
	cp := *report
	repo.db.table[report.ID] = &cp
	return nil
}

func (repo *reportRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	r, ok := repo.db.table[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (repo *reportRepository) FindAll(_ context.Context) ([]*entity.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *reportRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reports := make([]*entity.Report, 0, len(ids))
	for _, id := range ids {
		if r, ok := repo.db.table[id]; ok {
			cp := *r
			reports = append(reports, &cp)
		}
	}
	return reports, nil
}

func (repo *reportRepository) Categories(_ context.Context) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := map[string]bool{}
	categories := []string{}
	for _, r := range repo.query() {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		categories = append(categories, r.Category)
	}
	return categories, nil
}

func (repo *reportRepository) FindByUserID(_ context.Context, userID uuid.UUID, limit int) ([]*entity.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reports []*entity.Report
	for _, r := range repo.query() {
		if r.OwnedBy(userID) {
			reports = append(reports, r)
		}
	}
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

func (repo *reportRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	r, ok := repo.db.table[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	r.UpdatedAt = at
	return nil
}

func (repo *reportRepository) CountPendingBefore(_ context.Context, before time.Time) (int64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int64
	for _, r := range repo.db.table {
		if r.Status == entity.StatusPending && r.CreatedAt.Before(before) {
			n++
		}
	}
	return n, nil
}
