package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrCourseNotFound    = fmt.Errorf("course %w", ErrNotFound)
	ErrChapterNotFound   = fmt.Errorf("chapter %w", ErrNotFound)
	ErrSectionNotFound   = fmt.Errorf("section %w", ErrNotFound)
	ErrObjectiveNotFound = fmt.Errorf("learning objective %w", ErrNotFound)
	ErrCategoryNotFound  = fmt.Errorf("category %w", ErrNotFound)
	ErrPostNotFound      = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound   = fmt.Errorf("comment %w", ErrNotFound)
	ErrReplyNotFound     = fmt.Errorf("reply %w", ErrNotFound)
	ErrIdeaNotFound      = fmt.Errorf("idea %w", ErrNotFound)
	ErrEventNotFound     = fmt.Errorf("calendar event %w", ErrNotFound)
	ErrLinkNotFound      = fmt.Errorf("profile link %w", ErrNotFound)
	ErrProviderNotFound  = fmt.Errorf("oauth provider %w", ErrNotFound)

	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrAlreadyPurchased   = fmt.Errorf("course already purchased: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrEmailNotVerified   = fmt.Errorf("provider email is not verified: %w", ErrUnauthorized)
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// NotReadyError lists the fields that block publishing.
type NotReadyError struct {
	Resource string
	Missing  []string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s is not ready to publish: missing %s", e.Resource, strings.Join(e.Missing, ", "))
}
