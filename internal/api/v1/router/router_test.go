package router

import (
	"testing"

	"learnhub/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestImagePublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", imagePublicBase(&config.Config{ImagePublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "http://localhost:9000/images", imagePublicBase(&config.Config{S3URL: "http://localhost:9000", S3Bucket: "images"}))
	assert.Equal(t, "https://images.s3.eu-west-1.amazonaws.com", imagePublicBase(&config.Config{S3Bucket: "images", S3Region: "eu-west-1"}))
}
