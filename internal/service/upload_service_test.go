package service

import (
	"context"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	input *s3.PutObjectInput
}

func (p *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.input = in
	return &v4.PresignedHTTPRequest{URL: "https://s3.test/" + *in.Bucket + "/" + *in.Key + "?sig=1", Method: "PUT"}, nil
}

type fakeDeleter struct {
	keys []string
}

func (d *fakeDeleter) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	d.keys = append(d.keys, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestPresignImage(t *testing.T) {
	presigner := &fakePresigner{}
	svc := NewUploadService(presigner, &fakeDeleter{}, "images", "https://cdn.test/", zerolog.Nop())

	up, err := svc.PresignImage(context.Background(), "u1", "cat.jpeg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Key, "images/u1/"))
	assert.True(t, strings.HasSuffix(up.Key, ".jpg"))
	assert.Equal(t, "https://cdn.test/"+up.Key, up.PublicURL)
	assert.Equal(t, "image/jpeg", *presigner.input.ContentType)
	assert.Contains(t, up.UploadURL, up.Key)
}

func TestPresignImageRejectsNonImages(t *testing.T) {
	svc := newTestUploads(&fakeDeleter{})
	for _, ct := range []string{"application/pdf", "image/svg+xml", ""} {
		_, err := svc.PresignImage(context.Background(), "u1", "f", ct)
		assert.ErrorIs(t, err, ErrInvalidInput, ct)
	}
}

func TestDeleteImageOnlyOwnBucket(t *testing.T) {
	deleter := &fakeDeleter{}
	svc := newTestUploads(deleter)
	ctx := context.Background()

	require.NoError(t, svc.DeleteImage(ctx, "u1", "https://elsewhere.test/images/u1/a.png"))
	require.NoError(t, svc.DeleteImage(ctx, "u1", ""))
	require.NoError(t, svc.DeleteImage(ctx, "u1", testCDN+"/images/u1/a.png"))
	assert.Equal(t, []string{"images/u1/a.png"}, deleter.keys)
}

func TestDeleteImageOnlyOwnerPrefix(t *testing.T) {
	deleter := &fakeDeleter{}
	svc := newTestUploads(deleter)
	ctx := context.Background()

	require.NoError(t, svc.DeleteImage(ctx, "attacker", testCDN+"/images/victim/avatar.png"))
	require.NoError(t, svc.DeleteImage(ctx, "attacker", testCDN+"/images/attacker/../victim/avatar.png"))
	require.NoError(t, svc.DeleteImage(ctx, "u1", testCDN+"/images/u10/a.png"))
	require.NoError(t, svc.DeleteImage(ctx, "", testCDN+"/images//a.png"))
	assert.Empty(t, deleter.keys)
}

func TestCheckImageURL(t *testing.T) {
	svc := newTestUploads(&fakeDeleter{})
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{"empty", "", true},
		{"own upload", testCDN + "/images/u1/a.png", true},
		{"external host", "https://elsewhere.test/images/victim/a.png", true},
		{"other user", testCDN + "/images/victim/a.png", false},
		{"prefix lookalike", testCDN + "/images/u10/a.png", false},
		{"traversal", testCDN + "/images/u1/../victim/a.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckImageURL("u1", tt.url)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}
