package dummy

import (
	"context"

	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/comment/repository"
	"github.com/google/uuid"
)

type commentRepository struct {
	db *commentTable
}

var _ repository.CommentRepository = (*commentRepository)(nil)

func NewCommentRepository(db *DB) repository.CommentRepository {
	return &commentRepository{db: db.comments}
}

func (repo *commentRepository) Create(_ context.Context, comment *entity.ReportComment) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if comment.ID == uuid.Nil {
		comment.ID = newID()
	}
	comment.CreatedAt = stamp()
	cp := *comment
	repo.db.table = append(repo.db.table, &cp)
	return nil
}

// FindByReportID relies on insertion order matching creation order.
func (repo *commentRepository) FindByReportID(_ context.Context, reportID uuid.UUID) ([]*entity.ReportComment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	comments := make([]*entity.ReportComment, 0)
	for _, c := range repo.db.table {
		if c.ReportID == reportID {
			cp := *c
			comments = append(comments, &cp)
		}
	}
	return comments, nil
}
