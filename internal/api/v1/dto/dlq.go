package dto

import (
	"encoding/json"
	"time"
)

// DeadLetterResponseDTO is a failed queue message kept for inspection
type DeadLetterResponseDTO struct {
	ID        string          `json:"id"`
	QueueName string          `json:"queue_name"`
	MessageID string          `json:"message_id"`
	Payload   json.RawMessage `json:"payload"`
	LastError *string         `json:"last_error"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// HealthResponseDTO reports dependency status
type HealthResponseDTO struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Redis  string `json:"redis"`
}
