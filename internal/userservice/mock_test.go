package userservice

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/sushihentaime/blogstack/internal/common"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) insertUser(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockStore) getUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *mockStore) usernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) searchUsers(ctx context.Context, query string, limit int) ([]Profile, error) {
	args := m.Called(ctx, query, limit)
	p, _ := args.Get(0).([]Profile)
	return p, args.Error(1)
}

type mockHasher struct {
	mock.Mock
}

func (m *mockHasher) Hash(plain string) ([]byte, error) {
	args := m.Called(plain)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockHasher) Compare(hash []byte, plain string) (bool, error) {
	args := m.Called(hash, plain)
	return args.Bool(0), args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*FederatedIdentity, error) {
	args := m.Called(ctx, token)
	id, _ := args.Get(0).(*FederatedIdentity)
	return id, args.Error(1)
}

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}
