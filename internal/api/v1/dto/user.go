package dto

import "time"

// UserResponseDTO is returned in API responses
type UserResponseDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ImageURL  string    `json:"image_url"`
	Bio       string    `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdateDTO is used for incoming profile update requests
type UserUpdateDTO struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// ProfileResponseDTO is a public profile; it never includes the email address
type ProfileResponseDTO struct {
	ID                 string                     `json:"id"`
	Name               string                     `json:"name"`
	ImageURL           string                     `json:"image_url"`
	Bio                string                     `json:"bio"`
	Role               string                     `json:"role"`
	CreatedAt          time.Time                  `json:"created_at"`
	Links              []ProfileLinkResponseDTO   `json:"links"`
	Courses            []CourseSummaryResponseDTO `json:"courses"`
	PublishedPostCount int                        `json:"published_post_count"`
}

// ProfileLinkCreateDTO is used for incoming link creation requests
type ProfileLinkCreateDTO struct {
	Label string `json:"label" validate:"required,max=50"`
	URL   string `json:"url" validate:"required,url"`
}

// ProfileLinkUpdateDTO is used for incoming link update requests
type ProfileLinkUpdateDTO struct {
	Label *string `json:"label,omitempty" validate:"omitempty,min=1,max=50"`
	URL   *string `json:"url,omitempty" validate:"omitempty,url"`
}

type ProfileLinkResponseDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}
