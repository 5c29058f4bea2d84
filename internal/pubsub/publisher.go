package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnhub/internal/config"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const (
	EventCoursePublished   = "course.published"
	EventCourseUnpublished = "course.unpublished"
	EventEnrollmentCreated = "enrollment.created"
	EventUserRegistered    = "user.registered"
)

// Event is the envelope published for domain changes.
type Event struct {
	Type       string            `json:"type"`
	SubjectID  string            `json:"subject_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Publisher defines an interface for publishing messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
}

// PubSubPublisher is an implementation of Publisher using Google Pub/Sub.
type PubSubPublisher struct {
	client *pubsub.Client
}

// NewPublisher creates a new PubSubPublisher using the GCP project from config.
func NewPublisher(ctx context.Context, cfg *config.Config) (*PubSubPublisher, error) {
	var opts []option.ClientOption
	if cfg.GCPCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubPublisher{client: client}, nil
}

// Publish sends the payload to the given Pub/Sub topic and returns the message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	t := p.client.Topic(topic)
	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return id, nil
}

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher drops every message. Used when no GCP project is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) (string, error) {
	return "", nil
}

// Emitter publishes domain events to a single topic. Failures are logged and
// never returned, events are not part of the request outcome.
type Emitter struct {
	publisher Publisher
	topic     string
	logger    zerolog.Logger
}

func NewEmitter(publisher Publisher, topic string, logger zerolog.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("component", "Emitter").Logger(),
	}
}

func (e *Emitter) Emit(ctx context.Context, eventType, subjectID string, attrs map[string]string) {
	if e == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, SubjectID: subjectID, Attributes: attrs, OccurredAt: time.Now().UTC()})
	if err != nil {
		e.logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal event")
		return
	}
	if _, err := e.publisher.Publish(ctx, e.topic, payload); err != nil {
		e.logger.Error().Err(err).Str("event_type", eventType).Str("subject_id", subjectID).Msg("Failed to publish event")
	}
}
