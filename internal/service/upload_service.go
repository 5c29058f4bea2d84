package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const presignTTL = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUpload is a presigned PUT for a new image object.
type ImageUpload struct {
	UploadURL string
	Key       string
	PublicURL string
	ExpiresAt time.Time
}

// ObjectPresigner is the subset of s3.PresignClient used for uploads.
type ObjectPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectDeleter is the subset of s3.Client used to remove images.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type UploadService interface {
	PresignImage(ctx context.Context, userID, filename, contentType string) (*ImageUpload, error)
	// CheckImageURL rejects bucket URLs that were not issued to userID.
	// URLs outside the bucket are accepted.
	CheckImageURL(userID, publicURL string) error
	// DeleteImage removes the object behind a public URL issued to ownerID by
	// PresignImage. URLs outside the bucket or another user's prefix are ignored.
	DeleteImage(ctx context.Context, ownerID, publicURL string) error
}

type uploadService struct {
	presigner  ObjectPresigner
	deleter    ObjectDeleter
	bucket     string
	publicBase string
	now        func() time.Time
	logger     zerolog.Logger
}

func NewUploadService(presigner ObjectPresigner, deleter ObjectDeleter, bucket, publicBase string, logger zerolog.Logger) UploadService {
	return &uploadService{
		presigner:  presigner,
		deleter:    deleter,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		now:        time.Now,
		logger:     logger.With().Str("service", "UploadService").Logger(),
	}
}

// ImageKey builds the object key for a user's upload.
func ImageKey(userID, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", invalidInput("unsupported content type %q", contentType)
	}
	return path.Join("images", userID, uuid.NewString()+ext), nil
}

func (s *uploadService) PresignImage(ctx context.Context, userID, filename, contentType string) (*ImageUpload, error) {
	key, err := ImageKey(userID, contentType)
	if err != nil {
		return nil, err
	}
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to presign image upload")
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	s.logger.Debug().Str("key", key).Str("filename", filename).Msg("Presigned image upload")
	return &ImageUpload{
		UploadURL: req.URL,
		Key:       key,
		PublicURL: s.publicBase + "/" + key,
		ExpiresAt: s.now().Add(presignTTL),
	}, nil
}

// bucketKey returns the object key behind a public URL when it points into
// the images area of the bucket.
func (s *uploadService) bucketKey(publicURL string) (string, bool) {
	prefix := s.publicBase + "/"
	if publicURL == "" || !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	key := path.Clean(strings.TrimPrefix(publicURL, prefix))
	if !strings.HasPrefix(key, "images/") {
		return "", false
	}
	return key, true
}

func ownsImageKey(userID, key string) bool {
	return userID != "" && strings.HasPrefix(key, path.Join("images", userID)+"/")
}

func (s *uploadService) CheckImageURL(userID, publicURL string) error {
	key, ok := s.bucketKey(publicURL)
	if !ok || ownsImageKey(userID, key) {
		return nil
	}
	return invalidInput("image_url must be an image you uploaded")
}

func (s *uploadService) DeleteImage(ctx context.Context, ownerID, publicURL string) error {
	key, ok := s.bucketKey(publicURL)
	if !ok {
		return nil
	}
	if !ownsImageKey(ownerID, key) {
		s.logger.Warn().Str("owner_id", ownerID).Str("key", key).Msg("Refusing to delete image outside owner prefix")
		return nil
	}
	if _, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
