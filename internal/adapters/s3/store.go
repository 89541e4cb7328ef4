package s3

// Package s3 implements ports.ObjectStore on top of the AWS SDK v2 S3
// client. Public objects (avatars, portfolio images) are served from a CDN
// base URL; everything else goes through presigned GETs.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fixwave/fixwave-api/internal/ports"
)

// objectAPI is the slice of the S3 client the store uses. Narrowing the
// surface keeps the store testable without a live bucket.
type objectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4PresignedRequest, error)
}

// presignClient adapts *awss3.PresignClient to presignAPI.
type presignClient struct {
	inner *awss3.PresignClient
}

type v4PresignedRequest struct {
	URL string
}

func (p presignClient) PresignGetObject(
	ctx context.Context,
	params *awss3.GetObjectInput,
	optFns ...func(*awss3.PresignOptions),
) (*v4PresignedRequest, error) {
	req, err := p.inner.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &v4PresignedRequest{URL: req.URL}, nil
}

// StoreConfig configures Store.
type StoreConfig struct {
	Bucket string

	// PublicBaseURL, when set, is prepended to keys to form public URLs
	// (typically a CDN distribution in front of the bucket). When empty,
	// Put returns no URL and callers fall back to presigned GETs.
	PublicBaseURL string
}

// Store implements ports.ObjectStore.
type Store struct {
	api     objectAPI
	presign presignAPI
	bucket  string
	baseURL string
}

// NewStore wraps an S3 client for the given bucket.
func NewStore(client *awss3.Client, cfg StoreConfig) (*Store, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	return &Store{
		api:     client,
		presign: presignClient{inner: awss3.NewPresignClient(client)},
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *Store) Put(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectResult, error) {
	if in.Key == "" {
		return ports.PutObjectResult{}, errors.New("object key is required")
	}

	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(in.Key),
		Body:   in.Body,
	}
	if in.ContentType != "" {
		input.ContentType = aws.String(in.ContentType)
	}
	if in.Size > 0 {
		input.ContentLength = aws.Int64(in.Size)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return ports.PutObjectResult{}, fmt.Errorf("s3 put object: %w", err)
	}

	result := ports.PutObjectResult{Key: in.Key}
	if s.baseURL != "" {
		result.URL = s.baseURL + "/" + in.Key
	}
	return result, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}
	_, err := s.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}

func (s *Store) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign get object: %w", err)
	}
	return req.URL, nil
}
