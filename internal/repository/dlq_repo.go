package repository

import (
	"context"
	"fmt"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DLQRepository interface {
	Create(ctx context.Context, message *model.DeadLetterMessage) error
	List(ctx context.Context, limit int) ([]model.DeadLetterMessage, error)
}

type dlqRepository struct {
	pool *pgxpool.Pool
}

func NewDLQRepository(pool *pgxpool.Pool) DLQRepository {
	return &dlqRepository{pool: pool}
}

func (r *dlqRepository) Create(ctx context.Context, message *model.DeadLetterMessage) error {
	query := `
        INSERT INTO dead_letter_messages (queue_name, message_id, payload, last_error, status)
        VALUES ($1, $2, $3::jsonb, $4, $5)
        RETURNING id, created_at, updated_at
    `
	err := r.pool.QueryRow(
		ctx,
		query,
		message.QueueName,
		message.MessageID,
		message.Payload,
		message.LastError,
		message.Status,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert dead letter message: %w", err)
	}
	return nil
}

func (r *dlqRepository) List(ctx context.Context, limit int) ([]model.DeadLetterMessage, error) {
	query := `
        SELECT id, queue_name, message_id, payload::text, last_error, status, created_at, updated_at
        FROM dead_letter_messages
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query dead letter messages: %w", err)
	}
	defer rows.Close()

	messages := []model.DeadLetterMessage{}
	for rows.Next() {
		var m model.DeadLetterMessage
		if err := rows.Scan(&m.ID, &m.QueueName, &m.MessageID, &m.Payload, &m.LastError, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan dead letter message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
