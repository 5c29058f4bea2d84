package dto

import "time"

// ImageUploadDTO requests a presigned image upload
type ImageUploadDTO struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,oneof=image/png image/jpeg image/gif image/webp"`
}

// ImageUploadResponseDTO is returned with the presigned PUT URL
type ImageUploadResponseDTO struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
