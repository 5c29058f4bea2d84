package dto

import "time"

// RegisterDTO is used for password sign-up requests
type RegisterDTO struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginDTO is used for password sign-in requests
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponseDTO is returned after a successful sign-in
type AuthResponseDTO struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      UserResponseDTO `json:"user"`
}

// ProvidersResponseDTO lists the configured OAuth providers
type ProvidersResponseDTO struct {
	Providers []string `json:"providers"`
}

// SessionResponseDTO describes the decoded bearer token
type SessionResponseDTO struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
