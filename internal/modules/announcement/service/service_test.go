package service_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"anoa.com/safereport/internal/dummy"
	"anoa.com/safereport/internal/entity"
	"anoa.com/safereport/internal/modules/announcement/dto"
	announcement "anoa.com/safereport/internal/modules/announcement/service"
	"anoa.com/safereport/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup() (announcement.AnnouncementService, *dummy.Storage, *dummy.Publisher) {
	db := dummy.Open()
	store := &dummy.Storage{FailOn: "broken"}
	publisher := &dummy.Publisher{}
	return announcement.NewAnnouncementService(dummy.NewAnnouncementRepository(db), store, publisher), store, publisher
}

func request(title string, active bool) dto.AnnouncementRequest {
	return dto.AnnouncementRequest{Title: title, Content: "Be kind today.", Type: entity.AnnouncementQuote, IsActive: active}
}

func image(body string) *dto.ImageUpload {
	return &dto.ImageUpload{
		Name:        "poster.png",
		Size:        int64(len(body)),
		ContentType: "image/png",
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func TestListActiveNewestFirstWithLimit(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	var titles []string
	for i := 0; i < 7; i++ {
		title := string(rune('A' + i))
		_, err := svc.Create(ctx, request(title, true), nil)
		require.NoError(t, err)
		titles = append(titles, title)
	}
	_, err := svc.Create(ctx, request("hidden", false), nil)
	require.NoError(t, err)

	feed, err := svc.ListActive(ctx, uuid.New(), 0)
	require.NoError(t, err)
	require.Len(t, feed, announcement.ActiveFeedLimit)
	assert.Equal(t, "G", feed[0].Title)
	assert.Equal(t, "C", feed[4].Title)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, "hidden", all[0].Title)

	count, err := svc.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestToggleActiveTwiceRestores(t *testing.T) {
	svc, _, publisher := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, request("Reminder", true), nil)
	require.NoError(t, err)

	active, err := svc.ToggleActive(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = svc.ToggleActive(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, active)

	_, err = svc.ToggleActive(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	for _, ch := range publisher.Channels() {
		assert.Equal(t, "announcements", ch)
	}
}

func TestToggleLike(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	created, err := svc.Create(ctx, request("Quote", true), nil)
	require.NoError(t, err)

	res, err := svc.ToggleLike(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.LikeResponse{Liked: true, LikesCount: 1}, res)

	res, err = svc.ToggleLike(ctx, bob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LikesCount)

	feed, err := svc.ListActive(ctx, alice, 5)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].LikedByMe)
	assert.Equal(t, 2, feed[0].LikesCount)

	res, err = svc.ToggleLike(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.LikeResponse{Liked: false, LikesCount: 1}, res)

	feed, err = svc.ListActive(ctx, alice, 5)
	require.NoError(t, err)
	assert.False(t, feed[0].LikedByMe)
}

func TestCreateWithImage(t *testing.T) {
	svc, store, _ := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, request("Poster", true), image("png-bytes"))
	require.NoError(t, err)
	require.NotNil(t, created.ImageURL)
	require.Len(t, store.Uploads, 1)
	assert.Equal(t, announcement.ImageFolder, store.Uploads[0].Folder)
	assert.Equal(t, "https://files.test/"+announcement.ImageFolder+"/"+store.Uploads[0].FileName, *created.ImageURL)
}

func TestImageUploadFailureAbortsSave(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	_, err := svc.Create(ctx, request("Poster", true), image("broken"))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperror.MapErrorToStatus(err))
	assert.Equal(t, "failed to upload image", err.Error())

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateImageHandling(t *testing.T) {
	svc, store, _ := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, request("Poster", true), image("v1"))
	require.NoError(t, err)
	oldURL := *created.ImageURL

	req := request("Poster v2", false)
	updated, err := svc.Update(ctx, created.ID, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Poster v2", updated.Title)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.ImageURL, "image kept when nothing new is sent")
	assert.Equal(t, oldURL, *updated.ImageURL)

	req.RemoveImage = true
	updated, err = svc.Update(ctx, created.ID, req, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.ImageURL)
	assert.Equal(t, []string{oldURL}, store.Deleted)

	_, err = svc.Update(ctx, uuid.New(), req, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	req.Type = "poem"
	_, err = svc.Update(ctx, created.ID, req, nil)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestDeleteRemovesImage(t *testing.T) {
	svc, store, _ := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, request("Poster", true), image("bytes"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, []string{*created.ImageURL}, store.Deleted)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), apperror.ErrNotFound)
}
