package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadService struct {
	service.UploadService
	userID      string
	contentType string
}

func (f *fakeUploadService) PresignImage(_ context.Context, userID, filename, contentType string) (*service.ImageUpload, error) {
	f.userID = userID
	f.contentType = contentType
	key := "images/" + userID + "/abc-" + filename
	return &service.ImageUpload{
		UploadURL: "https://bucket.test/" + key + "?X-Amz-Signature=sig",
		Key:       key,
		PublicURL: "https://cdn.test/" + key,
		ExpiresAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func newUploadRouter(svc service.UploadService) http.Handler {
	h := NewUploadHandler(svc, newValidator(), zerolog.Nop())
	return newTestRouter(h.RegisterRoutes)
}

func TestPresignImageRequiresAuth(t *testing.T) {
	svc := &fakeUploadService{}
	rec := do(t, newUploadRouter(svc), http.MethodPost, "/uploads/images",
		dto.ImageUploadDTO{Filename: "a.png", ContentType: "image/png"}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.userID)
}

func TestPresignImageValidation(t *testing.T) {
	router := newUploadRouter(&fakeUploadService{})

	for _, body := range []dto.ImageUploadDTO{
		{Filename: "", ContentType: "image/png"},
		{Filename: "a.svg", ContentType: "image/svg+xml"},
		{Filename: "a.html", ContentType: "text/html"},
	} {
		rec := do(t, router, http.MethodPost, "/uploads/images", body, bearer(t, testUserID))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body.ContentType)
	}
}

func TestPresignImage(t *testing.T) {
	svc := &fakeUploadService{}
	rec := do(t, newUploadRouter(svc), http.MethodPost, "/uploads/images",
		dto.ImageUploadDTO{Filename: "cover.webp", ContentType: "image/webp"}, bearer(t, testUserID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testUserID, svc.userID)
	assert.Equal(t, "image/webp", svc.contentType)

	var got dto.ImageUploadResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "images/"+testUserID+"/abc-cover.webp", got.Key)
	assert.Equal(t, "https://cdn.test/"+got.Key, got.PublicURL)
	assert.Contains(t, got.UploadURL, "X-Amz-Signature")
	assert.False(t, got.ExpiresAt.IsZero())
}
