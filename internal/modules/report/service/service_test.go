package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"anoa.com/safereport/internal/dummy"
	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/report/dto"
	userRepo "anoa.com/safereport/internal/modules/user/repository"
	"anoa.com/safereport/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *reportService
	db        *dummy.DB
	users     userRepo.UserRepository
	storage   *dummy.Storage
	publisher *dummy.Publisher
	broker    *dummy.Broker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dummy.Open()
	f := &fixture{
		db:        db,
		users:     dummy.NewUserRepository(db),
		storage:   &dummy.Storage{FailOn: "corrupt"},
		publisher: &dummy.Publisher{},
		broker:    &dummy.Broker{},
	}

	svc := NewReportService(
		dummy.NewReportRepository(db),
		f.users,
		f.storage,
		nil,
		f.publisher,
		nil,
		f.broker,
		Options{SubmitCooldown: 30 * time.Second, AnonymousDailyQuota: 3},
	).(*reportService)
	svc.now = func() time.Time { return fixedNow }
	svc.async = func(fn func()) { fn() }
	f.svc = svc
	return f
}

func (f *fixture) student(t *testing.T, first, last string) uuid.UUID {
	t.Helper()

	user := &entity.User{Email: strings.ToLower(first) + "@school.test"}
	profile := &entity.Profile{FirstName: first, LastName: last}
	require.NoError(t, f.users.Create(context.Background(), user, profile))
	return user.ID
}

func file(name, body string) dto.FileUpload {
	return dto.FileUpload{
		Name:        name,
		Size:        int64(len(body)),
		ContentType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func validRequest() dto.SubmitReportRequest {
	return dto.SubmitReportRequest{
		IncidentDate: "2024-05-30",
		Category:     entity.CategoryVerbal,
		Location:     "cafeteria",
		Details:      "  They kept shouting at me during lunch.  ",
	}
}

func TestSubmitWithoutFiles(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	res, err := f.svc.Submit(context.Background(), uid, validRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, res.Report.Status)
	assert.Nil(t, res.Report.Attachments)
	assert.Equal(t, 0, res.AttachmentCount)
	assert.Equal(t, "Location: Cafeteria\n\nThey kept shouting at me during lunch.", res.Report.Details)
	assert.Equal(t, "2024-05-30", res.Report.IncidentDate)
	assert.False(t, res.Report.IsAnonymous)
	require.NotNil(t, res.Report.ReporterName)
	assert.Equal(t, "Ana Cruz", *res.Report.ReporterName)

	stored, err := f.svc.GetByID(context.Background(), res.Report.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Attachments)

	assert.Equal(t, []string{"reports"}, f.publisher.Channels())
	assert.Equal(t, []string{"report.submitted"}, f.broker.Types())
}

func TestSubmitUploadsSequentiallyAndSkipsFailures(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	files := []dto.FileUpload{
		file("one.png", "first"),
		file("two.jpg", "corrupt bytes"),
		file("three.pdf", "third"),
	}
	res, err := f.svc.Submit(context.Background(), uid, validRequest(), files)
	require.NoError(t, err)

	assert.Equal(t, 2, res.AttachmentCount)
	assert.Equal(t, 1, res.FailedUploads)
	require.Len(t, res.Report.Attachments, 2)

	require.Len(t, f.storage.Uploads, 2)
	assert.Equal(t, "first", string(f.storage.Uploads[0].Body))
	assert.Equal(t, "third", string(f.storage.Uploads[1].Body))
	for _, up := range f.storage.Uploads {
		assert.Equal(t, "report-attachments/"+uid.String(), up.Folder)
	}
	assert.True(t, strings.HasSuffix(f.storage.Uploads[1].FileName, ".pdf"))
}

func TestSubmitRejectsOversizedFileBeforeUploading(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	big := file("video.mp4", "x")
	big.Size = dto.MaxFileBytes + 1
	files := []dto.FileUpload{file("ok.png", "fine"), big}

	_, err := f.svc.Submit(context.Background(), uid, validRequest(), files)
	require.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Zero(t, f.storage.UploadCount())

	all, err := f.svc.ListAll(context.Background(), dto.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, all.Data)
}

func TestSubmitAcceptsFileAtExactLimit(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	edge := file("scan.png", "edge")
	edge.Size = dto.MaxFileBytes

	res, err := f.svc.Submit(context.Background(), uid, validRequest(), []dto.FileUpload{edge})
	require.NoError(t, err)
	assert.Equal(t, 1, res.AttachmentCount)
}

func TestSubmitRejectsTooManyFiles(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	files := make([]dto.FileUpload, dto.MaxFiles+1)
	for i := range files {
		files[i] = file("f.png", "data")
	}

	_, err := f.svc.Submit(context.Background(), uid, validRequest(), files)
	require.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Zero(t, f.storage.UploadCount())

	res, err := f.svc.Submit(context.Background(), uid, validRequest(), files[:dto.MaxFiles])
	require.NoError(t, err)
	assert.Equal(t, dto.MaxFiles, res.AttachmentCount)
}

func TestSubmitAnonymous(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	req := validRequest()
	req.Anonymous = true
	res, err := f.svc.Submit(context.Background(), uid, req, []dto.FileUpload{file("a.png", "img")})
	require.NoError(t, err)

	assert.True(t, res.Report.IsAnonymous)
	assert.Nil(t, res.Report.ReporterName)
	assert.Equal(t, "report-attachments/anonymous", f.storage.Uploads[0].Folder)

	mine, err := f.svc.ListMine(context.Background(), uid, 5)
	require.NoError(t, err)
	assert.Empty(t, mine)

	// Nothing links the report back to its submitter.
	_, err = f.svc.GetForStudent(context.Background(), uid, res.Report.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	tests := []struct {
		name   string
		mutate func(r *dto.SubmitReportRequest)
	}{
		{"unknown location", func(r *dto.SubmitReportRequest) { r.Location = "library" }},
		{"others needs free text", func(r *dto.SubmitReportRequest) { r.Location = "others"; r.OtherLocation = "  " }},
		{"blank details", func(r *dto.SubmitReportRequest) { r.Details = " \n " }},
		{"bad date", func(r *dto.SubmitReportRequest) { r.IncidentDate = "30/05/2024" }},
		{"future date", func(r *dto.SubmitReportRequest) { r.IncidentDate = "2024-06-10" }},
		{"unknown category", func(r *dto.SubmitReportRequest) { r.Category = "gossip" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := f.svc.Submit(context.Background(), uid, req, nil)
			assert.ErrorIs(t, err, apperror.ErrBadRequest)
		})
	}
}

func TestSubmitFreeTextLocation(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")

	req := validRequest()
	req.Location = "outside_campus"
	req.OtherLocation = " Bus stop on Main St "
	res, err := f.svc.Submit(context.Background(), uid, req, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Report.Details, "Location: Bus stop on Main St\n\n"))
}

func TestGetForStudentHidesOthersReports(t *testing.T) {
	f := newFixture(t)
	owner := f.student(t, "Ana", "Cruz")
	other := f.student(t, "Ben", "Reyes")

	res, err := f.svc.Submit(context.Background(), owner, validRequest(), nil)
	require.NoError(t, err)

	got, err := f.svc.GetForStudent(context.Background(), owner, res.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Report.ID, got.ID)

	_, err = f.svc.GetForStudent(context.Background(), other, res.Report.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStatusAnyToAny(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")
	res, err := f.svc.Submit(context.Background(), uid, validRequest(), nil)
	require.NoError(t, err)
	id := res.Report.ID

	for _, status := range []string{entity.StatusResolved, entity.StatusPending, entity.StatusInProgress, entity.StatusReviewed} {
		updated, err := f.svc.UpdateStatus(context.Background(), id, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err = f.svc.UpdateStatus(context.Background(), id, "closed")
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = f.svc.UpdateStatus(context.Background(), uuid.New(), entity.StatusResolved)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Contains(t, f.publisher.Channels(), "report:"+id.String())
	assert.Contains(t, f.broker.Types(), "report.status_changed")
}

func TestListAllFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")
	ctx := context.Background()

	var ids []uuid.UUID
	for _, category := range []string{entity.CategoryVerbal, entity.CategoryCyber, entity.CategoryVerbal} {
		req := validRequest()
		req.Category = category
		res, err := f.svc.Submit(ctx, uid, req, nil)
		require.NoError(t, err)
		ids = append(ids, res.Report.ID)
	}
	_, err := f.svc.UpdateStatus(ctx, ids[1], entity.StatusResolved)
	require.NoError(t, err)

	resolved, err := f.svc.ListAll(ctx, dto.ReportFilter{Status: entity.StatusResolved})
	require.NoError(t, err)
	require.Len(t, resolved.Data, 1)
	assert.Equal(t, ids[1], resolved.Data[0].ID)
	assert.ElementsMatch(t, []string{entity.CategoryVerbal, entity.CategoryCyber}, resolved.Categories)

	page, err := f.svc.ListAll(ctx, dto.ReportFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, ids[0], page.Data[0].ID, "oldest report lands on the last page")
	assert.Equal(t, int64(3), page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)

	// Without a search engine, Search behaves like ListAll.
	searched, err := f.svc.Search(ctx, dto.ReportFilter{Search: "shouting", Category: entity.CategoryCyber})
	require.NoError(t, err)
	require.Len(t, searched.Data, 1)
	assert.Equal(t, ids[1], searched.Data[0].ID)
}

func TestListMineCapsLimit(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Submit(ctx, uid, validRequest(), nil)
		require.NoError(t, err)
	}

	recent, err := f.svc.ListMine(ctx, uid, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	all, err := f.svc.ListMine(ctx, uid, 500)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStaleDigest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := dummy.NewReportRepository(f.db)

	old := &entity.Report{Category: entity.CategoryOther, Details: "old", CreatedAt: fixedNow.AddDate(0, 0, -10)}
	require.NoError(t, repo.Create(ctx, old))
	oldResolved := &entity.Report{Category: entity.CategoryOther, Details: "done", Status: entity.StatusResolved, CreatedAt: fixedNow.AddDate(0, 0, -10)}
	require.NoError(t, repo.Create(ctx, oldResolved))
	fresh := &entity.Report{Category: entity.CategoryOther, Details: "new", CreatedAt: fixedNow.AddDate(0, 0, -1)}
	require.NoError(t, repo.Create(ctx, fresh))

	count, err := f.svc.StaleDigest(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, f.broker.Events, 1)
	assert.Equal(t, "report.stale_digest", f.broker.Events[0].Type)
	assert.Equal(t, 1, f.broker.Events[0].Count)
}

func TestReindexWithoutSearchEngine(t *testing.T) {
	f := newFixture(t)
	n, err := f.svc.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type rankedIndex struct {
	ids []uuid.UUID
	err error
}

func (idx *rankedIndex) IndexReports(...*entity.Report) error { return nil }

func (idx *rankedIndex) SearchReportIDs(_, _, _ string, limit int) ([]uuid.UUID, error) {
	if len(idx.ids) > limit {
		return idx.ids[:limit], idx.err
	}
	return idx.ids, idx.err
}

func TestSearchWithIndex(t *testing.T) {
	f := newFixture(t)
	uid := f.student(t, "Ana", "Cruz")
	ctx := context.Background()

	var ids []uuid.UUID
	for _, category := range []string{entity.CategoryVerbal, entity.CategoryCyber, entity.CategoryPhysical} {
		req := validRequest()
		req.Category = category
		res, err := f.svc.Submit(ctx, uid, req, nil)
		require.NoError(t, err)
		ids = append(ids, res.Report.ID)
	}

	listed, err := f.svc.ListAll(ctx, dto.ReportFilter{})
	require.NoError(t, err)

	t.Run("keeps rank order and shares the category list", func(t *testing.T) {
		f.svc.index = &rankedIndex{ids: []uuid.UUID{ids[2], ids[0]}}

		res, err := f.svc.Search(ctx, dto.ReportFilter{Search: "anything"})
		require.NoError(t, err)
		require.Len(t, res.Data, 2)
		assert.Equal(t, ids[2], res.Data[0].ID)
		assert.Equal(t, ids[0], res.Data[1].ID)
		assert.Equal(t, listed.Categories, res.Categories)
		assert.False(t, res.Truncated)
	})

	t.Run("flags results cut at the cap", func(t *testing.T) {
		many := append([]uuid.UUID{ids[1]}, make([]uuid.UUID, searchResultLimit+10)...)
		for i := 1; i < len(many); i++ {
			many[i] = uuid.New()
		}
		f.svc.index = &rankedIndex{ids: many}

		res, err := f.svc.Search(ctx, dto.ReportFilter{Search: "anything"})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.True(t, res.Truncated)
	})

	t.Run("falls back when the engine fails", func(t *testing.T) {
		f.svc.index = &rankedIndex{err: assert.AnError}

		res, err := f.svc.Search(ctx, dto.ReportFilter{Search: "anything"})
		require.NoError(t, err)
		assert.Equal(t, listed.Categories, res.Categories)
		assert.False(t, res.Truncated)
	})
}
