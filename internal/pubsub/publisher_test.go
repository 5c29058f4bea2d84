package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"learnhub/internal/config"

	ps "cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topic    string
	payloads [][]byte
	err      error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	r.topic = topic
	r.payloads = append(r.payloads, payload)
	return "msg-1", r.err
}

func TestEmitterPublishesEnvelope(t *testing.T) {
	rec := &recordingPublisher{}
	e := NewEmitter(rec, "events", zerolog.Nop())

	e.Emit(context.Background(), EventCoursePublished, "course-1", map[string]string{"user_id": "u1"})

	require.Len(t, rec.payloads, 1)
	assert.Equal(t, "events", rec.topic)
	var ev Event
	require.NoError(t, json.Unmarshal(rec.payloads[0], &ev))
	assert.Equal(t, EventCoursePublished, ev.Type)
	assert.Equal(t, "course-1", ev.SubjectID)
	assert.Equal(t, "u1", ev.Attributes["user_id"])
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestEmitterSwallowsPublishErrors(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("unavailable")}
	e := NewEmitter(rec, "events", zerolog.Nop())

	assert.NotPanics(t, func() {
		e.Emit(context.Background(), EventEnrollmentCreated, "course-1", nil)
	})
	assert.Len(t, rec.payloads, 1)
}

func TestNilEmitterIsNoop(t *testing.T) {
	var e *Emitter
	assert.NotPanics(t, func() {
		e.Emit(context.Background(), EventUserRegistered, "u1", nil)
	})
}

func TestNewPublisherInvalidProject(t *testing.T) {
	cfg := &config.Config{GCPProjectID: ""}
	if _, err := NewPublisher(context.Background(), cfg); err == nil {
		t.Fatal("expected error when project ID is empty")
	}
}

func TestPublishWithEmulator(t *testing.T) {
	emulator := os.Getenv("PUBSUB_EMULATOR_HOST")
	if emulator == "" {
		t.Skip("PUBSUB_EMULATOR_HOST is not set, skip emulator integration test")
	}

	ctx := context.Background()
	cfg := &config.Config{GCPProjectID: "test-project"}
	pub, err := NewPublisher(ctx, cfg)
	require.NoError(t, err)
	defer pub.Close()

	topic, err := pub.client.CreateTopic(ctx, "learnhub-test-events")
	require.NoError(t, err)
	sub, err := pub.client.CreateSubscription(ctx, "learnhub-test-sub", ps.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	msgID, err := pub.Publish(ctx, "learnhub-test-events", []byte("hello-emulator"))
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c := make(chan []byte, 1)
	go func() {
		sub.Receive(recvCtx, func(ctx context.Context, m *ps.Message) {
			c <- m.Data
			m.Ack()
			cancel()
		})
	}()

	select {
	case data := <-c:
		assert.Equal(t, "hello-emulator", string(data))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message from emulator subscription")
	}
}
