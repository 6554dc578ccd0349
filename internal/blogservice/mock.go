package blogservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/zentinela/blog/internal/common"
)

type MockPostReader struct {
	mock.Mock
}

func (m *MockPostReader) ListPosts(ctx context.Context) ([]PostWithAuthor, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]PostWithAuthor)
	return posts, args.Error(1)
}

func (m *MockPostReader) GetPostBySlug(ctx context.Context, slug string) (*PostWithAuthor, error) {
	args := m.Called(ctx, slug)
	post, _ := args.Get(0).(*PostWithAuthor)
	return post, args.Error(1)
}

func (m *MockPostReader) GetPopularPosts(ctx context.Context, limit int) ([]PostWithAuthor, error) {
	args := m.Called(ctx, limit)
	posts, _ := args.Get(0).([]PostWithAuthor)
	return posts, args.Error(1)
}

type MockViewRecorder struct {
	mock.Mock
}

func (m *MockViewRecorder) RecordView(ctx context.Context, postID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, postID, at)
	return args.Error(0)
}

type MockMessageProducer struct {
	mock.Mock
}

func (m *MockMessageProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}
