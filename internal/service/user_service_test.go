package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"learnhub/internal/cache"
	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLinkRepo struct {
	repository.ProfileLinkRepository
	links map[string]*model.ProfileLink
}

func newFakeLinkRepo(links ...*model.ProfileLink) *fakeLinkRepo {
	r := &fakeLinkRepo{links: map[string]*model.ProfileLink{}}
	for _, l := range links {
		r.links[l.ID] = l
	}
	return r
}

func (r *fakeLinkRepo) ListLinks(_ context.Context, userID string) ([]model.ProfileLink, error) {
	var out []model.ProfileLink
	for _, l := range r.links {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeLinkRepo) GetLink(_ context.Context, id string) (*model.ProfileLink, error) {
	l, ok := r.links[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLinkRepo) CreateLink(_ context.Context, l *model.ProfileLink) error {
	l.ID = fmt.Sprintf("link-%d", len(r.links)+1)
	l.Position = 0
	for _, existing := range r.links {
		if existing.UserID == l.UserID && existing.Position >= l.Position {
			l.Position = existing.Position + 1
		}
	}
	cp := *l
	r.links[l.ID] = &cp
	return nil
}

func (r *fakeLinkRepo) UpdateLink(_ context.Context, l *model.ProfileLink) error {
	cp := *l
	r.links[l.ID] = &cp
	return nil
}

func (r *fakeLinkRepo) DeleteLink(_ context.Context, id string) error {
	delete(r.links, id)
	return nil
}

func (r *fakeLinkRepo) UpdateLinkPosition(_ context.Context, id string, position int) error {
	r.links[id].Position = position
	return nil
}

type userFixture struct {
	users *fakeUserRepo
	links *fakeLinkRepo
	cache *fakeCache
	svc   UserService
}

func newUserFixture(links ...*model.ProfileLink) *userFixture {
	f := &userFixture{
		users: newFakeUserRepo(
			&model.User{ID: "ada", Name: "Ada", Email: "ada@example.com", Role: model.RoleTeacher, CreatedAt: time.Now()},
			&model.User{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: model.RoleStudent},
		),
		links: newFakeLinkRepo(links...),
		cache: &fakeCache{},
	}
	courses := newFakeCourseRepo(&model.Course{ID: "c1", UserID: "ada", Title: "Go", IsPublished: true})
	posts := newFakePostRepo(
		&model.Post{ID: "p1", UserID: "ada", IsPublished: true},
		&model.Post{ID: "p2", UserID: "ada"},
	)
	f.svc = NewUserService(f.users, f.links, courses, posts, f.cache, time.Minute, zerolog.Nop())
	return f
}

func TestGetProfileOmitsEmail(t *testing.T) {
	f := newUserFixture(&model.ProfileLink{ID: "l1", UserID: "ada", Label: "Site", URL: "https://ada.dev"})

	p, err := f.svc.GetProfile(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, 1, p.PublishedPostCount)
	require.Len(t, p.Courses, 1)
	require.Len(t, p.Links, 1)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ada@example.com")
	assert.NotContains(t, string(raw), `"email"`)

	_, err = f.svc.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileChangesInvalidateCache(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	key := cache.ProfileKey("ada")

	bio := "Gopher"
	_, err := f.svc.Update(ctx, "ada", UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, []string{key}, f.cache.deleted)

	l, err := f.svc.CreateLink(ctx, "ada", "Site", "https://ada.dev")
	require.NoError(t, err)
	assert.Equal(t, 0, l.Position)

	label := "Blog"
	_, err = f.svc.UpdateLink(ctx, "ada", l.ID, LinkUpdate{Label: &label})
	require.NoError(t, err)

	require.NoError(t, f.svc.ReorderLinks(ctx, "ada", []model.PositionUpdate{{ID: l.ID, Position: 3}}))
	require.NoError(t, f.svc.DeleteLink(ctx, "ada", l.ID))
	assert.Equal(t, []string{key, key, key, key, key}, f.cache.deleted)
}

func TestLinkOwnership(t *testing.T) {
	f := newUserFixture(
		&model.ProfileLink{ID: "mine", UserID: "ada", Position: 0},
		&model.ProfileLink{ID: "theirs", UserID: "bob", Position: 0},
	)
	ctx := context.Background()

	label := "x"
	_, err := f.svc.UpdateLink(ctx, "ada", "theirs", LinkUpdate{Label: &label})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteLink(ctx, "ada", "theirs"), ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteLink(ctx, "ada", "missing"), ErrLinkNotFound)
	assert.Empty(t, f.cache.deleted)
}

func TestReorderLinksChecksEveryLinkFirst(t *testing.T) {
	f := newUserFixture(
		&model.ProfileLink{ID: "mine", UserID: "ada", Position: 0},
		&model.ProfileLink{ID: "theirs", UserID: "bob", Position: 0},
	)

	err := f.svc.ReorderLinks(context.Background(), "ada", []model.PositionUpdate{
		{ID: "mine", Position: 5},
		{ID: "theirs", Position: 6},
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 0, f.links.links["mine"].Position, "no position written")
	assert.Equal(t, 0, f.links.links["theirs"].Position)
	assert.Empty(t, f.cache.deleted)
}
