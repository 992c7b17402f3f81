// Package repository contains persistence abstractions for archived uploads.
// Implementations live in subpackages (e.g., postgres).
package repository

import (
	"context"

	"readable/internal/model"
)

// UploadRepository defines data access for archived uploads. No business logic here.
type UploadRepository interface {
	// Create inserts a new upload record and returns the stored row.
	Create(ctx context.Context, u *model.Upload) (*model.Upload, error)

	// FindByID returns an upload by its ID or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Upload, error)

	// List returns a page of uploads, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Upload], error)

	// Delete removes an upload by ID. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
