package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"readable/internal/model"
	"readable/internal/repository"
	"readable/internal/storage"
)

// DownloadURLExpiry is the lifetime of pre-signed download links.
const DownloadURLExpiry = 15 * time.Minute

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("upload not found")
)

// UploadListResult is the service-level DTO for paginated uploads.
type UploadListResult struct {
	Items []model.Upload `json:"data"`
	Total int            `json:"total"`
}

// ArchiveInput describes an upload to keep.
type ArchiveInput struct {
	Filename    string
	Kind        string
	ContentType string
	Data        []byte
	TextLength  int
}

// ArchiveService keeps raw uploads in object storage with their metadata in the database.
type ArchiveService interface {
	// Archive stores the bytes under uploads/<uuid><ext>, then records the row.
	// The stored object is removed again when the row cannot be saved.
	Archive(ctx context.Context, in ArchiveInput) (*model.Upload, error)

	List(ctx context.Context, limit, offset int) (*UploadListResult, error)
	Get(ctx context.Context, id string) (*model.Upload, error)

	// Delete removes the object first, then the row.
	Delete(ctx context.Context, id string) error

	// DownloadURL returns a pre-signed link to the raw upload.
	DownloadURL(ctx context.Context, id string) (string, error)

	// Ping reports whether both backends are reachable.
	Ping(ctx context.Context) error
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type archiveService struct {
	store storage.Storage
	repo  repository.UploadRepository
	db    Pinger
	now   func() time.Time
}

// NewArchiveService constructs an ArchiveService. db may be nil, in which case Ping only checks storage.
func NewArchiveService(store storage.Storage, repo repository.UploadRepository, db Pinger) ArchiveService {
	return &archiveService{store: store, repo: repo, db: db, now: time.Now}
}

func (s *archiveService) Archive(ctx context.Context, in ArchiveInput) (*model.Upload, error) {
	id := uuid.New().String()
	key := filepath.ToSlash(filepath.Join("uploads", id+filepath.Ext(in.Filename)))

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objInfo, err := s.store.Put(ctx, storage.Object{
		Key:         key,
		Body:        bytes.NewReader(in.Data),
		Size:        int64(len(in.Data)),
		ContentType: contentType,
		Filename:    in.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	u := &model.Upload{
		ID:          id,
		Filename:    in.Filename,
		Kind:        in.Kind,
		StoragePath: objInfo.Key,
		Size:        int64(len(in.Data)),
		ContentType: contentType,
		TextLength:  in.TextLength,
		CreatedAt:   s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, u)
	if err != nil {
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *archiveService) List(ctx context.Context, limit, offset int) (*UploadListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := res.Items
	if items == nil {
		items = []model.Upload{}
	}
	return &UploadListResult{Items: items, Total: res.Total}, nil
}

func (s *archiveService) Get(ctx context.Context, id string) (*model.Upload, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *archiveService) Delete(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Keep the row when the object survives so the reference is not lost.
	if err := s.store.Delete(ctx, u.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *archiveService) DownloadURL(ctx context.Context, id string) (string, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, u.StoragePath, u.Filename, DownloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return url, nil
}

func (s *archiveService) Ping(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
