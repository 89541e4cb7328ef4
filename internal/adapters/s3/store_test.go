package s3

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixwave/fixwave-api/internal/ports"
)

type mockObjectAPI struct {
	PutObjectFunc    func(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObjectFunc func(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

func (m *mockObjectAPI) PutObject(
	ctx context.Context,
	params *awss3.PutObjectInput,
	optFns ...func(*awss3.Options),
) (*awss3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params, optFns...)
}

func (m *mockObjectAPI) DeleteObject(
	ctx context.Context,
	params *awss3.DeleteObjectInput,
	optFns ...func(*awss3.Options),
) (*awss3.DeleteObjectOutput, error) {
	return m.DeleteObjectFunc(ctx, params, optFns...)
}

type mockPresignAPI struct {
	PresignGetObjectFunc func(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4PresignedRequest, error)
}

func (m *mockPresignAPI) PresignGetObject(
	ctx context.Context,
	params *awss3.GetObjectInput,
	optFns ...func(*awss3.PresignOptions),
) (*v4PresignedRequest, error) {
	return m.PresignGetObjectFunc(ctx, params, optFns...)
}

func newTestStore(api objectAPI, presign presignAPI, baseURL string) *Store {
	return &Store{
		api:     api,
		presign: presign,
		bucket:  "fixwave-uploads",
		baseURL: baseURL,
	}
}

func TestStore_PutPublic(t *testing.T) {
	var got *awss3.PutObjectInput
	api := &mockObjectAPI{
		PutObjectFunc: func(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
			got = params
			return &awss3.PutObjectOutput{}, nil
		},
	}
	store := newTestStore(api, nil, "https://cdn.fixwave.dev")

	res, err := store.Put(context.Background(), ports.PutObjectInput{
		Key:         "avatars/u-1/pic.png",
		Body:        strings.NewReader("png-bytes"),
		ContentType: "image/png",
		Size:        128,
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "fixwave-uploads", aws.ToString(got.Bucket))
	assert.Equal(t, "avatars/u-1/pic.png", aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, int64(128), aws.ToInt64(got.ContentLength))
	assert.Equal(t, "https://cdn.fixwave.dev/avatars/u-1/pic.png", res.URL)
}

func TestStore_PutWithoutBaseURLHasNoPublicURL(t *testing.T) {
	api := &mockObjectAPI{
		PutObjectFunc: func(_ context.Context, _ *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
			return &awss3.PutObjectOutput{}, nil
		},
	}
	store := newTestStore(api, nil, "")

	res, err := store.Put(context.Background(), ports.PutObjectInput{Key: "documents/u-1/doc.pdf"})
	require.NoError(t, err)
	assert.Empty(t, res.URL)
	assert.Equal(t, "documents/u-1/doc.pdf", res.Key)
}

func TestStore_PutError(t *testing.T) {
	api := &mockObjectAPI{
		PutObjectFunc: func(_ context.Context, _ *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	store := newTestStore(api, nil, "")

	_, err := store.Put(context.Background(), ports.PutObjectInput{Key: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put object")

	_, err = store.Put(context.Background(), ports.PutObjectInput{})
	assert.Error(t, err, "missing key is rejected before hitting the API")
}

func TestStore_Delete(t *testing.T) {
	var gotKey string
	api := &mockObjectAPI{
		DeleteObjectFunc: func(_ context.Context, params *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
			gotKey = aws.ToString(params.Key)
			return &awss3.DeleteObjectOutput{}, nil
		},
	}
	store := newTestStore(api, nil, "")

	require.NoError(t, store.Delete(context.Background(), "avatars/u-1/pic.png"))
	assert.Equal(t, "avatars/u-1/pic.png", gotKey)

	assert.Error(t, store.Delete(context.Background(), ""))
}

func TestStore_PresignGet(t *testing.T) {
	presign := &mockPresignAPI{
		PresignGetObjectFunc: func(_ context.Context, params *awss3.GetObjectInput, _ ...func(*awss3.PresignOptions)) (*v4PresignedRequest, error) {
			return &v4PresignedRequest{URL: "https://fixwave-uploads.s3.amazonaws.com/" + aws.ToString(params.Key) + "?sig=abc"}, nil
		},
	}
	store := newTestStore(nil, presign, "")

	url, err := store.PresignGet(context.Background(), "documents/u-1/doc.pdf", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "documents/u-1/doc.pdf")

	_, err = store.PresignGet(context.Background(), "", time.Minute)
	assert.Error(t, err)
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil, StoreConfig{Bucket: "b"})
	assert.Error(t, err)

	_, err = NewStore(awss3.New(awss3.Options{}), StoreConfig{})
	assert.Error(t, err)
}
