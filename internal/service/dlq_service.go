package service

import (
	"context"
	"encoding/json"
	"strconv"

	"learnhub/internal/model"
	"learnhub/internal/repository"
)

const DeadLetterStatusUnprocessed = "unprocessed"

type DLQService interface {
	// Record persists a queue message that exhausted its retries.
	Record(ctx context.Context, queue string, messageID int64, payload json.RawMessage, lastErr error) error
	List(ctx context.Context, limit int) ([]model.DeadLetterMessage, error)
}

type dlqService struct {
	repo repository.DLQRepository
}

func NewDLQService(repo repository.DLQRepository) DLQService {
	return &dlqService{repo: repo}
}

func (s *dlqService) Record(ctx context.Context, queue string, messageID int64, payload json.RawMessage, lastErr error) error {
	// Payload is stored as jsonb; wrap anything that is not valid JSON.
	doc := string(payload)
	if !json.Valid(payload) {
		wrapped, _ := json.Marshal(map[string]string{"raw": string(payload)})
		doc = string(wrapped)
	}
	msg := &model.DeadLetterMessage{
		QueueName: queue,
		MessageID: strconv.FormatInt(messageID, 10),
		Payload:   doc,
		Status:    DeadLetterStatusUnprocessed,
	}
	if lastErr != nil {
		e := lastErr.Error()
		msg.LastError = &e
	}
	return s.repo.Create(ctx, msg)
}

func (s *dlqService) List(ctx context.Context, limit int) ([]model.DeadLetterMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}
