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

const testIdea = "3c2b1a09-8f7e-4d6c-9b5a-4f3e2d1c0b9a"

type fakeIdeaService struct {
	service.IdeaService
	ideas   map[string]model.Idea
	deleted []string
}

func newFakeIdeaService() *fakeIdeaService {
	return &fakeIdeaService{ideas: map[string]model.Idea{
		testIdea: {ID: testIdea, UserID: testUserID, Title: "Course on Go generics"},
	}}
}

func (f *fakeIdeaService) List(_ context.Context, userID string) ([]model.Idea, error) {
	var out []model.Idea
	for _, i := range f.ideas {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeIdeaService) Create(_ context.Context, userID, title, content string) (*model.Idea, error) {
	return &model.Idea{ID: testIdea, UserID: userID, Title: title, Content: content}, nil
}

func (f *fakeIdeaService) Get(_ context.Context, userID, ideaID string) (*model.Idea, error) {
	i, ok := f.ideas[ideaID]
	if !ok || i.UserID != userID {
		return nil, service.ErrIdeaNotFound
	}
	return &i, nil
}

func (f *fakeIdeaService) Delete(ctx context.Context, userID, ideaID string) error {
	if _, err := f.Get(ctx, userID, ideaID); err != nil {
		return err
	}
	f.deleted = append(f.deleted, ideaID)
	return nil
}

func newIdeaRouter(svc service.IdeaService) http.Handler {
	h := NewIdeaHandler(svc, newValidator(), zerolog.Nop())
	return newTestRouter(h.RegisterRoutes)
}

func TestIdeasRequireAuth(t *testing.T) {
	router := newIdeaRouter(newFakeIdeaService())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/ideas"},
		{http.MethodPost, "/ideas"},
		{http.MethodGet, "/ideas/" + testIdea},
		{http.MethodDelete, "/ideas/" + testIdea},
	} {
		rec := do(t, router, tc.method, tc.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestListIdeasReturnsArray(t *testing.T) {
	router := newIdeaRouter(newFakeIdeaService())

	rec := do(t, router, http.MethodGet, "/ideas", nil, bearer(t, "someone-else"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, router, http.MethodGet, "/ideas", nil, bearer(t, testUserID))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []dto.IdeaResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Course on Go generics", got[0].Title)
}

func TestCreateIdea(t *testing.T) {
	router := newIdeaRouter(newFakeIdeaService())

	rec := do(t, router, http.MethodPost, "/ideas", dto.IdeaCreateDTO{Content: "no title"}, bearer(t, testUserID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/ideas", dto.IdeaCreateDTO{Title: "Testing talk", Content: "outline"}, bearer(t, testUserID))
	require.Equal(t, http.StatusCreated, rec.Code)
	var got dto.IdeaResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Testing talk", got.Title)
	assert.Equal(t, "outline", got.Content)
}

func TestIdeaOfAnotherUserIsNotFound(t *testing.T) {
	svc := newFakeIdeaService()
	router := newIdeaRouter(svc)
	stranger := bearer(t, "0a1b2c3d-4e5f-4061-8293-a4b5c6d7e8f9")

	rec := do(t, router, http.MethodGet, "/ideas/"+testIdea, nil, stranger)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Idea not found")

	rec = do(t, router, http.MethodDelete, "/ideas/"+testIdea, nil, stranger)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, svc.deleted)

	rec = do(t, router, http.MethodGet, "/ideas/not-a-uuid", nil, bearer(t, testUserID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteIdea(t *testing.T) {
	svc := newFakeIdeaService()
	rec := do(t, newIdeaRouter(svc), http.MethodDelete, "/ideas/"+testIdea, nil, bearer(t, testUserID))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{testIdea}, svc.deleted)
}
