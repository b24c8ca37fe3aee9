package service_test

import (
	"context"
	"testing"

	"anoa.com/safereport/internal/dummy"
	"anoa.com/safereport/internal/entity"
	comment "anoa.com/safereport/internal/modules/comment/service"
	"anoa.com/safereport/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (comment.CommentService, *dummy.Publisher, uuid.UUID, uuid.UUID) {
	t.Helper()

	db := dummy.Open()
	reports := dummy.NewReportRepository(db)
	publisher := &dummy.Publisher{}

	owner := uuid.New()
	r := &entity.Report{UserID: &owner, Category: entity.CategoryVerbal, Details: "details"}
	require.NoError(t, reports.Create(context.Background(), r))

	svc := comment.NewCommentService(dummy.NewCommentRepository(db), reports, nil, publisher, 0)
	return svc, publisher, owner, r.ID
}

func TestCreateAndListComments(t *testing.T) {
	svc, publisher, owner, reportID := setup(t)
	ctx := context.Background()
	student := comment.Author{UserID: owner, Role: entity.RoleStudent}
	admin := comment.Author{UserID: uuid.New(), Role: entity.RoleAdmin}

	first, err := svc.Create(ctx, student, reportID, "  Is there an update?  ")
	require.NoError(t, err)
	assert.Equal(t, "Is there an update?", first.Content)
	assert.Equal(t, entity.AuthorStudent, first.AuthorRole)
	require.NotNil(t, first.AuthorID)
	assert.Equal(t, owner, *first.AuthorID)

	second, err := svc.Create(ctx, admin, reportID, "We are looking into it.")
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorAdmin, second.AuthorRole)
	assert.Nil(t, second.AuthorID)

	list, err := svc.List(ctx, admin, reportID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	assert.Equal(t, []string{"report_comments:" + reportID.String(), "report_comments:" + reportID.String()}, publisher.Channels())
}

func TestCreateCommentRejections(t *testing.T) {
	svc, _, owner, reportID := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, comment.Author{UserID: owner, Role: entity.RoleStudent}, reportID, " \t\n")
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = svc.Create(ctx, comment.Author{UserID: owner, Role: entity.RoleStudent}, uuid.New(), "hello")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	stranger := comment.Author{UserID: uuid.New(), Role: entity.RoleStudent}
	_, err = svc.Create(ctx, stranger, reportID, "hello")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.List(ctx, stranger, reportID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
