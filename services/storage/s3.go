package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Config holds S3-compatible storage configuration
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// ImageStore uploads listing images to an S3-compatible bucket
type ImageStore struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// AllowedImageTypes maps accepted content types to file extensions
var AllowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MaxImageSize is the upload size ceiling (16MB)
const MaxImageSize = 16 * 1024 * 1024

// NewImageStore creates an image store for the configured bucket
func NewImageStore(config Config) (*ImageStore, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &ImageStore{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: strings.TrimSuffix(config.Endpoint, "/"),
	}, nil
}

// UploadImage stores an image under a generated key and returns its
// public URL
func (s *ImageStore) UploadImage(ctx context.Context, data io.ReadSeeker, contentType string) (string, error) {
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	key := path.Join("uploads", uuid.New().String()+ext)

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s.publicURL(key), nil
}

// DeleteImage removes an uploaded object by key
func (s *ImageStore) DeleteImage(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *ImageStore) publicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}
