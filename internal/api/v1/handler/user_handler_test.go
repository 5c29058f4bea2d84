package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/model"
	"learnhub/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLink = "3b9f6e2a-8c1d-4f5e-a7b3-2d4c6e8f0a1b"

type fakeUserService struct {
	service.UserService
	reordered []model.PositionUpdate
	linkErr   error
}

func (f *fakeUserService) Get(_ context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Name: "Ada", Email: "ada@example.com"}, nil
}

func (f *fakeUserService) GetProfile(_ context.Context, id string) (*service.PublicProfile, error) {
	if id != testUserID {
		return nil, service.ErrUserNotFound
	}
	return &service.PublicProfile{
		ID:    id,
		Name:  "Ada",
		Links: []model.ProfileLink{{ID: testLink, Label: "Site", URL: "https://ada.dev"}},
	}, nil
}

func (f *fakeUserService) CreateLink(_ context.Context, userID, label, url string) (*model.ProfileLink, error) {
	return &model.ProfileLink{ID: testLink, UserID: userID, Label: label, URL: url}, nil
}

func (f *fakeUserService) DeleteLink(context.Context, string, string) error {
	return f.linkErr
}

func (f *fakeUserService) ReorderLinks(_ context.Context, _ string, list []model.PositionUpdate) error {
	f.reordered = list
	return f.linkErr
}

func newUserRouter(svc service.UserService) http.Handler {
	h := NewUserHandler(svc, &fakeCourseService{}, newValidator(), zerolog.Nop())
	return newTestRouter(h.RegisterRoutes)
}

func TestGetProfileIsPublicAndOmitsEmail(t *testing.T) {
	router := newUserRouter(&fakeUserService{})

	rec := do(t, router, http.MethodGet, "/profiles/"+testUserID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "email")
	var got dto.ProfileResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ada", got.Name)
	require.Len(t, got.Links, 1)
	assert.NotNil(t, got.Courses)

	rec = do(t, router, http.MethodGet, "/profiles/"+testCourse, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/profiles/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMeRequiresAuth(t *testing.T) {
	router := newUserRouter(&fakeUserService{})

	rec := do(t, router, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/me", nil, bearer(t, testUserID))
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.UserResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestCreateLinkValidation(t *testing.T) {
	router := newUserRouter(&fakeUserService{})
	auth := bearer(t, testUserID)

	rec := do(t, router, http.MethodPost, "/users/me/links", dto.ProfileLinkCreateDTO{Label: "Site", URL: "not a url"}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/users/me/links", dto.ProfileLinkCreateDTO{Label: "Site", URL: "https://ada.dev"}, auth)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDeleteLinkOwnership(t *testing.T) {
	router := newUserRouter(&fakeUserService{linkErr: service.ErrForbidden})
	rec := do(t, router, http.MethodDelete, "/users/me/links/"+testLink, nil, bearer(t, testUserID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	router = newUserRouter(&fakeUserService{})
	rec = do(t, router, http.MethodDelete, "/users/me/links/"+testLink, nil, bearer(t, testUserID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReorderLinks(t *testing.T) {
	svc := &fakeUserService{}
	router := newUserRouter(svc)

	body := dto.ReorderDTO{List: []dto.PositionDTO{{ID: testLink, Position: 2}}}
	rec := do(t, router, http.MethodPut, "/users/me/links/reorder", body, bearer(t, testUserID))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, []model.PositionUpdate{{ID: testLink, Position: 2}}, svc.reordered)
}
