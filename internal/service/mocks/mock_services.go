package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"readable/internal/model"
	"readable/internal/service"
	"readable/internal/speech"
)

type MockTextService struct {
	mock.Mock
}

func (m *MockTextService) ExtractUpload(ctx context.Context, in service.UploadInput) (*model.ExtractedText, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExtractedText), args.Error(1)
}

func (m *MockTextService) Simplify(ctx context.Context, text string) (*model.Simplification, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Simplification), args.Error(1)
}

func (m *MockTextService) Speak(ctx context.Context, text, voice string) (*speech.Audio, error) {
	args := m.Called(ctx, text, voice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*speech.Audio), args.Error(1)
}

func (m *MockTextService) Analyze(ctx context.Context, text string) (*model.ScoredText, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScoredText), args.Error(1)
}

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Archive(ctx context.Context, in service.ArchiveInput) (*model.Upload, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Upload), args.Error(1)
}

func (m *MockArchiveService) List(ctx context.Context, limit, offset int) (*service.UploadListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadListResult), args.Error(1)
}

func (m *MockArchiveService) Get(ctx context.Context, id string) (*model.Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Upload), args.Error(1)
}

func (m *MockArchiveService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArchiveService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
