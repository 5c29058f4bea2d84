package mailer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	msg, err := Render(Job{
		Template: TemplateWelcome,
		ToEmail:  "ada@example.com",
		ToName:   "Ada",
		Data:     map[string]string{"app": "LearnHub", "url": "https://learnhub.dev"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to LearnHub, Ada!", msg.Subject)
	assert.Contains(t, msg.Text, "https://learnhub.dev/courses")
	assert.Contains(t, msg.HTML, `<a href="https://learnhub.dev/courses">`)
	assert.Equal(t, "ada@example.com", msg.ToEmail)
}

func TestRenderEscapesHTML(t *testing.T) {
	msg, err := Render(Job{
		Template: TemplateEnrollment,
		ToName:   "Bob",
		Data:     map[string]string{"course": "<script>x</script>", "course_id": "c1", "url": "https://x"},
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.Text, "<script>x</script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render(Job{Template: "nope"})
	assert.Error(t, err)
}

type fakeQueue struct {
	queue   string
	payload []byte
}

func (f *fakeQueue) Send(_ context.Context, queue string, payload []byte) error {
	f.queue, f.payload = queue, payload
	return nil
}

func TestQueueEnqueuer(t *testing.T) {
	q := &fakeQueue{}
	e := NewQueueEnqueuer(q, "email_queue")

	require.NoError(t, e.Enqueue(context.Background(), Job{Template: TemplateWelcome, ToEmail: "a@b.c"}))
	assert.Equal(t, "email_queue", q.queue)

	var job Job
	require.NoError(t, json.Unmarshal(q.payload, &job))
	assert.Equal(t, TemplateWelcome, job.Template)

	assert.Error(t, e.Enqueue(context.Background(), Job{Template: "bogus"}))
}
