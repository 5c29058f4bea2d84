package service

import (
	"context"
	"testing"

	"learnhub/internal/mailer"
	"learnhub/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollmentFixture struct {
	courses   *fakeCourseRepo
	chapters  *fakeChapterRepo
	purchases *fakePurchaseRepo
	gateway   *fakeGateway
	mail      *fakeEnqueuer
	activity  *fakeActivity
	svc       EnrollmentService
}

func newEnrollmentFixture(courses ...*model.Course) *enrollmentFixture {
	f := &enrollmentFixture{
		courses:   newFakeCourseRepo(courses...),
		chapters:  newFakeChapterRepo(),
		purchases: newFakePurchaseRepo(),
		gateway:   &fakeGateway{url: "https://checkout.stripe.test/s/1"},
		mail:      &fakeEnqueuer{},
		activity:  &fakeActivity{},
	}
	users := newFakeUserRepo(&model.User{ID: "buyer", Name: "Buyer", Email: "buyer@example.com"})
	f.svc = NewEnrollmentService(users, f.courses, f.chapters, f.purchases, f.gateway, f.mail, nil, f.activity, "https://app.test", zerolog.Nop())
	return f
}

func paidCourse(id string) *model.Course {
	return &model.Course{ID: id, UserID: "author", Title: "Paid", IsPublished: true, Price: decimal.NewNullDecimal(decimal.RequireFromString("49.99"))}
}

func TestCheckoutFreeCourseEnrollsDirectly(t *testing.T) {
	f := newEnrollmentFixture(&model.Course{ID: "free", UserID: "author", Title: "Free", IsPublished: true})

	res, err := f.svc.Checkout(context.Background(), "buyer", "free")
	require.NoError(t, err)
	assert.True(t, res.Enrolled)
	assert.Empty(t, res.URL)
	assert.Zero(t, f.gateway.checkouts)
	require.Contains(t, f.purchases.purchases, "buyer/free")
	assert.True(t, f.purchases.purchases["buyer/free"].Amount.IsZero())
	require.Len(t, f.mail.jobs, 1)
	assert.Equal(t, mailer.TemplateEnrollment, f.mail.jobs[0].Template)
	assert.Equal(t, "Free", f.mail.jobs[0].Data["course"])
}

func TestCheckoutZeroPriceIsFree(t *testing.T) {
	c := &model.Course{ID: "zero", UserID: "author", IsPublished: true, Price: decimal.NewNullDecimal(decimal.Zero)}
	f := newEnrollmentFixture(c)
	res, err := f.svc.Checkout(context.Background(), "buyer", "zero")
	require.NoError(t, err)
	assert.True(t, res.Enrolled)
}

func TestCheckoutPaidCourseReturnsURL(t *testing.T) {
	f := newEnrollmentFixture(paidCourse("paid"))

	res, err := f.svc.Checkout(context.Background(), "buyer", "paid")
	require.NoError(t, err)
	assert.False(t, res.Enrolled)
	assert.Equal(t, "https://checkout.stripe.test/s/1", res.URL)
	assert.Empty(t, f.purchases.purchases)
}

func TestCheckoutAlreadyPurchased(t *testing.T) {
	f := newEnrollmentFixture(paidCourse("paid"))
	f.purchases.purchases["buyer/paid"] = &model.Purchase{UserID: "buyer", CourseID: "paid"}

	_, err := f.svc.Checkout(context.Background(), "buyer", "paid")
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Zero(t, f.gateway.checkouts)
}

func TestCheckoutUnpublishedCourse(t *testing.T) {
	c := paidCourse("draft")
	c.IsPublished = false
	f := newEnrollmentFixture(c)

	_, err := f.svc.Checkout(context.Background(), "buyer", "draft")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestWebhookCreatesPurchaseOnce(t *testing.T) {
	f := newEnrollmentFixture(paidCourse("paid"))
	f.gateway.event = &CheckoutCompleted{SessionID: "cs_1", UserID: "buyer", CourseID: "paid", Amount: decimal.RequireFromString("49.99")}

	require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	p := f.purchases.purchases["buyer/paid"]
	require.NotNil(t, p)
	assert.Equal(t, "49.99", p.Amount.StringFixed(2))
	require.NotNil(t, p.StripeSessionID)
	assert.Equal(t, "cs_1", *p.StripeSessionID)
	assert.Len(t, f.mail.jobs, 1, "replayed webhook does not re-announce")
}

func TestWebhookAcknowledgesDeletedCourse(t *testing.T) {
	f := newEnrollmentFixture()
	f.gateway.event = &CheckoutCompleted{SessionID: "cs_2", UserID: "buyer", CourseID: "gone", Amount: decimal.RequireFromString("10")}

	require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Empty(t, f.purchases.purchases)
	assert.Empty(t, f.mail.jobs)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	f := newEnrollmentFixture(paidCourse("paid"))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), nil, ""))
	assert.Empty(t, f.purchases.purchases)
}

func TestSetProgressRequiresAccess(t *testing.T) {
	f := newEnrollmentFixture(paidCourse("paid"))
	f.chapters.chapters["ch"] = &model.Chapter{ID: "ch", CourseID: "paid", IsPublished: true}

	_, err := f.svc.SetProgress(context.Background(), "buyer", "ch", true)
	assert.ErrorIs(t, err, ErrForbidden)

	f.purchases.purchases["buyer/paid"] = &model.Purchase{}
	p, err := f.svc.SetProgress(context.Background(), "buyer", "ch", true)
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	require.Len(t, f.activity.recorded, 1)
	assert.Equal(t, model.ActivityChapterCompleted, f.activity.recorded[0].Kind)
}

func TestGetProgress(t *testing.T) {
	f := newEnrollmentFixture(paidCourse("paid"))
	for i, published := range []bool{true, true, true, false} {
		id := string(rune('a' + i))
		f.chapters.chapters[id] = &model.Chapter{ID: id, CourseID: "paid", IsPublished: published}
	}
	f.purchases.completed["buyer/paid"] = 2

	pct, err := f.svc.GetProgress(context.Background(), "buyer", "paid")
	require.NoError(t, err)
	assert.InDelta(t, 66.666, pct, 0.01)
}
