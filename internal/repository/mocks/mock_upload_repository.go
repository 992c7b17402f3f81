package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"readable/internal/model"
	"readable/internal/repository"
)

type MockUploadRepository struct {
	mock.Mock
}

var _ repository.UploadRepository = (*MockUploadRepository)(nil)

// upload returns the first return value as *model.Upload, tolerating a nil setup.
func upload(args mock.Arguments) (*model.Upload, error) {
	u, _ := args.Get(0).(*model.Upload)
	return u, args.Error(1)
}

func (m *MockUploadRepository) Create(ctx context.Context, u *model.Upload) (*model.Upload, error) {
	return upload(m.Called(ctx, u))
}

func (m *MockUploadRepository) FindByID(ctx context.Context, id string) (*model.Upload, error) {
	return upload(m.Called(ctx, id))
}

func (m *MockUploadRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Upload], error) {
	args := m.Called(ctx, pq)
	page, _ := args.Get(0).(*repository.PageResult[model.Upload])
	return page, args.Error(1)
}

func (m *MockUploadRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
