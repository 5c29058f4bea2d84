package service

import (
	"context"
	"fmt"
	"testing"

	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdeaRepo struct {
	repository.IdeaRepository
	ideas map[string]*model.Idea
}

func newFakeIdeaRepo(ideas ...*model.Idea) *fakeIdeaRepo {
	r := &fakeIdeaRepo{ideas: map[string]*model.Idea{}}
	for _, i := range ideas {
		r.ideas[i.ID] = i
	}
	return r
}

func (r *fakeIdeaRepo) CreateIdea(_ context.Context, i *model.Idea) error {
	i.ID = fmt.Sprintf("idea-%d", len(r.ideas)+1)
	cp := *i
	r.ideas[i.ID] = &cp
	return nil
}

func (r *fakeIdeaRepo) GetIdeaByID(_ context.Context, id string) (*model.Idea, error) {
	i, ok := r.ideas[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *fakeIdeaRepo) CountIdeas(_ context.Context, userID string) (int, error) {
	n := 0
	for _, i := range r.ideas {
		if i.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeIdeaRepo) UpdateIdea(_ context.Context, i *model.Idea) error {
	cp := *i
	r.ideas[i.ID] = &cp
	return nil
}

func (r *fakeIdeaRepo) DeleteIdea(_ context.Context, id string) error {
	delete(r.ideas, id)
	return nil
}

func TestIdeasAreOwnerOnly(t *testing.T) {
	repo := newFakeIdeaRepo(&model.Idea{ID: "i1", UserID: "owner", Title: "Course on Go"})
	svc := NewIdeaService(repo)
	ctx := context.Background()

	_, err := svc.Get(ctx, "other", "i1")
	assert.ErrorIs(t, err, ErrIdeaNotFound, "other users see not found")

	title := "Stolen"
	_, err = svc.Update(ctx, "other", "i1", IdeaUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrIdeaNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "other", "i1"), ErrIdeaNotFound)
	assert.Equal(t, "Course on Go", repo.ideas["i1"].Title)

	got, err := svc.Get(ctx, "owner", "i1")
	require.NoError(t, err)
	assert.Equal(t, "Course on Go", got.Title)

	require.NoError(t, svc.Delete(ctx, "owner", "i1"))
	assert.Empty(t, repo.ideas)
}

func TestIdeaTitleValidation(t *testing.T) {
	repo := newFakeIdeaRepo()
	svc := NewIdeaService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner", "  ", "body")
	assert.ErrorIs(t, err, ErrInvalidInput)

	i, err := svc.Create(ctx, "owner", " Draft ", "body")
	require.NoError(t, err)
	assert.Equal(t, "Draft", i.Title)

	blank := ""
	_, err = svc.Update(ctx, "owner", i.ID, IdeaUpdate{Title: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
