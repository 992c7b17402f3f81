package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"readable/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, obj storage.Object) (storage.Stored, error) {
	args := m.Called(ctx, obj)
	if f, ok := args.Get(0).(func(storage.Object) storage.Stored); ok {
		return f(obj), args.Error(1)
	}
	return args.Get(0).(storage.Stored), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, filename, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
