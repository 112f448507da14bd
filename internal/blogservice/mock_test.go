package blogservice

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) insertBlog(ctx context.Context, b *newBlog) (int64, error) {
	args := m.Called(ctx, b)
	return int64(args.Int(0)), args.Error(1)
}

func (m *mockStore) addAuthorPost(ctx context.Context, authorID, blogRowID int64, increment int) error {
	args := m.Called(ctx, authorID, blogRowID, increment)
	return args.Error(0)
}

func (m *mockStore) listBlogs(ctx context.Context, f SearchFilter, limit, offset int) ([]Blog, error) {
	args := m.Called(ctx, f, limit, offset)
	b, _ := args.Get(0).([]Blog)
	return b, args.Error(1)
}

func (m *mockStore) countBlogs(ctx context.Context, f SearchFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) trendingBlogs(ctx context.Context, limit int) ([]TrendingBlog, error) {
	args := m.Called(ctx, limit)
	b, _ := args.Get(0).([]TrendingBlog)
	return b, args.Error(1)
}
