package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"learnhub/internal/cache"
	"learnhub/internal/mailer"
	"learnhub/internal/model"
	"learnhub/internal/repository"

	"github.com/rs/zerolog"
)

// Fakes embed the repository interface; calling a method they do not override panics.

type fakeCourseRepo struct {
	repository.CourseRepository
	courses    map[string]*model.Course
	categories map[string]*model.Category
	objectives []model.LearningObjective
	positions  []model.PositionUpdate
}

func newFakeCourseRepo(courses ...*model.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{courses: map[string]*model.Course{}, categories: map[string]*model.Category{}}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) CreateCourse(_ context.Context, c *model.Course) error {
	c.ID = fmt.Sprintf("course-%d", len(r.courses)+1)
	r.courses[c.ID] = c
	return nil
}

func (r *fakeCourseRepo) GetCourseByID(_ context.Context, id string) (*model.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) UpdateCourse(_ context.Context, c *model.Course) error {
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) SetCoursePublished(_ context.Context, id string, published bool) error {
	r.courses[id].IsPublished = published
	return nil
}

func (r *fakeCourseRepo) ListPublishedCoursesByUserID(_ context.Context, userID string) ([]model.CourseSummary, error) {
	var out []model.CourseSummary
	for _, c := range r.courses {
		if c.UserID == userID && c.IsPublished {
			out = append(out, model.CourseSummary{Course: *c})
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) GetCategoryByID(_ context.Context, id string) (*model.Category, error) {
	return r.categories[id], nil
}

func (r *fakeCourseRepo) ListObjectives(_ context.Context, courseID string) ([]model.LearningObjective, error) {
	var out []model.LearningObjective
	for _, o := range r.objectives {
		if o.CourseID == courseID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// CreateObjective appends like the SQL: MAX(position)+1, or 0 for the first row.
func (r *fakeCourseRepo) CreateObjective(_ context.Context, o *model.LearningObjective) error {
	o.ID = fmt.Sprintf("objective-%d", len(r.objectives)+1)
	o.Position = 0
	for _, existing := range r.objectives {
		if existing.CourseID == o.CourseID && existing.Position >= o.Position {
			o.Position = existing.Position + 1
		}
	}
	r.objectives = append(r.objectives, *o)
	return nil
}

func (r *fakeCourseRepo) UpdateObjectivePosition(_ context.Context, id string, position int) error {
	r.positions = append(r.positions, model.PositionUpdate{ID: id, Position: position})
	for i := range r.objectives {
		if r.objectives[i].ID == id {
			r.objectives[i].Position = position
		}
	}
	return nil
}

type fakeChapterRepo struct {
	repository.ChapterRepository
	chapters   map[string]*model.Chapter
	sections   []model.Section
	reorderErr error
	reordered  []model.PositionUpdate
}

func newFakeChapterRepo(chapters ...*model.Chapter) *fakeChapterRepo {
	r := &fakeChapterRepo{chapters: map[string]*model.Chapter{}}
	for _, ch := range chapters {
		r.chapters[ch.ID] = ch
	}
	return r
}

// CreateChapter appends like the SQL: MAX(position)+1, or 0 for the first row.
func (r *fakeChapterRepo) CreateChapter(_ context.Context, ch *model.Chapter) error {
	ch.ID = fmt.Sprintf("chapter-%d", len(r.chapters)+1)
	ch.Position = 0
	for _, existing := range r.chapters {
		if existing.CourseID == ch.CourseID && existing.Position >= ch.Position {
			ch.Position = existing.Position + 1
		}
	}
	cp := *ch
	r.chapters[ch.ID] = &cp
	return nil
}

func (r *fakeChapterRepo) GetChapterByID(_ context.Context, id string) (*model.Chapter, error) {
	ch, ok := r.chapters[id]
	if !ok {
		return nil, nil
	}
	cp := *ch
	return &cp, nil
}

func (r *fakeChapterRepo) ListChapters(_ context.Context, courseID string, publishedOnly bool) ([]model.Chapter, error) {
	var out []model.Chapter
	for _, ch := range r.chapters {
		if ch.CourseID == courseID && (!publishedOnly || ch.IsPublished) {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeChapterRepo) DeleteChapter(_ context.Context, id string) error {
	delete(r.chapters, id)
	return nil
}

func (r *fakeChapterRepo) SetChapterPublished(_ context.Context, id string, published bool) error {
	r.chapters[id].IsPublished = published
	return nil
}

func (r *fakeChapterRepo) CountPublishedChapters(_ context.Context, courseID string) (int, error) {
	n := 0
	for _, ch := range r.chapters {
		if ch.CourseID == courseID && ch.IsPublished {
			n++
		}
	}
	return n, nil
}

func (r *fakeChapterRepo) CreateSection(_ context.Context, sec *model.Section) error {
	sec.ID = fmt.Sprintf("section-%d", len(r.sections)+1)
	sec.Position = 0
	for _, existing := range r.sections {
		if existing.ChapterID == sec.ChapterID && existing.Position >= sec.Position {
			sec.Position = existing.Position + 1
		}
	}
	r.sections = append(r.sections, *sec)
	return nil
}

func (r *fakeChapterRepo) ListSections(_ context.Context, chapterID string) ([]model.Section, error) {
	out := []model.Section{}
	for _, sec := range r.sections {
		if sec.ChapterID == chapterID {
			out = append(out, sec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeChapterRepo) ReorderSections(_ context.Context, _ string, updates []model.PositionUpdate) error {
	if r.reorderErr != nil {
		return r.reorderErr
	}
	r.reordered = updates
	return nil
}

type fakePurchaseRepo struct {
	repository.PurchaseRepository
	mu        sync.Mutex
	purchases map[string]*model.Purchase
	completed map[string]int
	progress  []model.UserProgress
	revenue   []model.CourseRevenue
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: map[string]*model.Purchase{}, completed: map[string]int{}}
}

func (r *fakePurchaseRepo) CreatePurchase(_ context.Context, p *model.Purchase) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := p.UserID + "/" + p.CourseID
	if _, ok := r.purchases[key]; ok {
		return false, nil
	}
	p.ID = fmt.Sprintf("purchase-%d", len(r.purchases)+1)
	r.purchases[key] = p
	return true, nil
}

func (r *fakePurchaseRepo) GetPurchase(_ context.Context, userID, courseID string) (*model.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.purchases[userID+"/"+courseID], nil
}

func (r *fakePurchaseRepo) UpsertProgress(_ context.Context, p *model.UserProgress) error {
	r.progress = append(r.progress, *p)
	return nil
}

func (r *fakePurchaseRepo) RevenueByAuthor(context.Context, string) ([]model.CourseRevenue, error) {
	return r.revenue, nil
}

func (r *fakePurchaseRepo) CountCompletedChapters(_ context.Context, userID, courseID string) (int, error) {
	return r.completed[userID+"/"+courseID], nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users    map[string]*model.User
	accounts map[string]*model.Account
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*model.User{}, accounts: map[string]*model.Account{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, u *model.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetAccount(_ context.Context, provider, accountID string) (*model.Account, error) {
	return r.accounts[provider+"/"+accountID], nil
}

func (r *fakeUserRepo) CreateAccount(_ context.Context, a *model.Account) error {
	key := a.Provider + "/" + a.ProviderAccountID
	if _, ok := r.accounts[key]; ok {
		return repository.ErrDuplicate
	}
	r.accounts[key] = a
	return nil
}

type fakePostRepo struct {
	repository.PostRepository
	posts     map[string]*model.Post
	comments  map[string]*model.Comment
	replies   map[string]*model.Reply
	reactions map[string]*model.Reaction
}

func newFakePostRepo(posts ...*model.Post) *fakePostRepo {
	r := &fakePostRepo{
		posts:     map[string]*model.Post{},
		comments:  map[string]*model.Comment{},
		replies:   map[string]*model.Reply{},
		reactions: map[string]*model.Reaction{},
	}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) CreatePost(_ context.Context, p *model.Post) error {
	p.ID = fmt.Sprintf("post-%d", len(r.posts)+1)
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*model.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, p *model.Post) error {
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) CountPostsByUserID(_ context.Context, userID string, publishedOnly bool) (int, error) {
	n := 0
	for _, p := range r.posts {
		if p.UserID == userID && (!publishedOnly || p.IsPublished) {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) GetCommentByID(_ context.Context, id string) (*model.Comment, error) {
	return r.comments[id], nil
}

func (r *fakePostRepo) DeleteComment(_ context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

func (r *fakePostRepo) CreateReply(_ context.Context, rp *model.Reply) error {
	rp.ID = fmt.Sprintf("reply-%d", len(r.replies)+1)
	cp := *rp
	r.replies[rp.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetReplyByID(_ context.Context, id string) (*model.Reply, error) {
	return r.replies[id], nil
}

func (r *fakePostRepo) GetReaction(_ context.Context, postID, userID string) (*model.Reaction, error) {
	return r.reactions[postID+"/"+userID], nil
}

func (r *fakePostRepo) UpsertReaction(_ context.Context, rc *model.Reaction) error {
	cp := *rc
	r.reactions[rc.PostID+"/"+rc.UserID] = &cp
	return nil
}

func (r *fakePostRepo) DeleteReaction(_ context.Context, postID, userID string) error {
	delete(r.reactions, postID+"/"+userID)
	return nil
}

func (r *fakePostRepo) CountReactions(_ context.Context, postID string) ([]repository.ReactionCount, error) {
	byType := map[string]int{}
	for _, rc := range r.reactions {
		if rc.PostID == postID {
			byType[rc.Type]++
		}
	}
	var out []repository.ReactionCount
	for _, t := range ReactionTypes {
		if n := byType[t]; n > 0 {
			out = append(out, repository.ReactionCount{Type: t, Count: n})
		}
	}
	return out, nil
}

type fakeCalendarRepo struct {
	repository.CalendarRepository
	days     []model.ActivityDay
	since    time.Time
	upcoming int
}

func (r *fakeCalendarRepo) CountUpcomingEvents(context.Context, string, time.Time) (int, error) {
	return r.upcoming, nil
}

func (r *fakeCalendarRepo) CountActivitiesByDay(_ context.Context, _ string, since time.Time) ([]model.ActivityDay, error) {
	r.since = since
	return r.days, nil
}

type fakeGateway struct {
	url       string
	checkouts int
	event     *CheckoutCompleted
	err       error
}

func (g *fakeGateway) CreateCourseCheckout(context.Context, *model.User, *model.Course) (string, error) {
	g.checkouts++
	return g.url, g.err
}

func (g *fakeGateway) ParseWebhook([]byte, string) (*CheckoutCompleted, error) {
	return g.event, g.err
}

type fakeEnqueuer struct {
	jobs []mailer.Job
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, job mailer.Job) error {
	e.jobs = append(e.jobs, job)
	return nil
}

type recordedActivity struct {
	UserID, Kind, SubjectID string
}

type fakeActivity struct {
	recorded []recordedActivity
}

func (a *fakeActivity) Record(_ context.Context, userID, kind, subjectID string) {
	a.recorded = append(a.recorded, recordedActivity{userID, kind, subjectID})
}

const testCDN = "https://cdn.test"

// newTestUploads is an upload service over the fake S3 clients.
func newTestUploads(deleter *fakeDeleter) UploadService {
	return NewUploadService(&fakePresigner{}, deleter, "images", testCDN, zerolog.Nop())
}

// fakeCache records invalidations and always loads from source.
type fakeCache struct {
	cache.Nop
	deleted  []string
	prefixes []string
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

func (c *fakeCache) DeletePrefix(_ context.Context, prefix string) error {
	c.prefixes = append(c.prefixes, prefix)
	return nil
}
