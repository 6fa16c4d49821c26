package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/skillshare/internal/services"
)

type mockS3 struct {
	putFunc    func(ctx context.Context, in *s3.PutObjectInput) error
	deleteKeys []string
	deleteErr  error
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putFunc != nil {
		if err := m.putFunc(ctx, in); err != nil {
			return nil, err
		}
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	m.deleteKeys = append(m.deleteKeys, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_Store(t *testing.T) {
	var gotKey, gotBody, gotType string
	client := &mockS3{putFunc: func(_ context.Context, in *s3.PutObjectInput) error {
		assert.Equal(t, "media", aws.ToString(in.Bucket))
		gotKey = aws.ToString(in.Key)
		gotType = aws.ToString(in.ContentType)
		body, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		gotBody = string(body)
		return nil
	}}
	store := NewS3StoreWithClient(client, "media", "https://cdn.example.com/media/")

	url, err := store.Store(context.Background(), strings.NewReader("jpeg"), "me.jpg", CategoryImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotKey, "image/"))
	assert.Equal(t, "https://cdn.example.com/media/"+gotKey, url)
	assert.Equal(t, "jpeg", gotBody)
	assert.Equal(t, "image/jpeg", gotType)
}

func TestS3Store_StoreError(t *testing.T) {
	client := &mockS3{putFunc: func(context.Context, *s3.PutObjectInput) error { return errors.New("access denied") }}
	store := NewS3StoreWithClient(client, "media", "https://cdn.example.com")

	_, err := store.Store(context.Background(), strings.NewReader("x"), "a.png", CategoryImage)
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidInput)
}

func TestS3Store_Delete(t *testing.T) {
	client := &mockS3{}
	store := NewS3StoreWithClient(client, "media", "https://cdn.example.com")

	require.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/video/abc.mp4"))
	assert.Equal(t, []string{"video/abc.mp4"}, client.deleteKeys)

	err := store.Delete(context.Background(), "https://other.example.com/video/abc.mp4")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	err = store.Delete(context.Background(), "https://cdn.example.com/video/../x")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	client.deleteErr = errors.New("timeout")
	err = store.Delete(context.Background(), "https://cdn.example.com/image/a.png")
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidInput)
}
