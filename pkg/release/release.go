package release

import (
	"context"
	"io"
	"time"
)

type (
	// Release is a named, versioned set of published files
	Release struct {
		Name    string    `json:"name" bson:"name" validate:"required,releasename"`
		Version string    `json:"version" bson:"version" validate:"required"`
		Date    time.Time `json:"date" bson:"date" validate:"required"`
		Assets  []string  `json:"assets" bson:"assets"`
	}
	// File is a single upload belonging to a CreateRequest
	File struct {
		Name        string `validate:"required,filename"`
		ContentType string
		Content     io.Reader `validate:"required"`
	}
	// CreateRequest is the transient input of Service.Create
	CreateRequest struct {
		Name    string `validate:"required,releasename"`
		Version string `validate:"required,releaseversion"`
		Files   []File `validate:"dive"`
	}
	// Pagination wraps one page of items
	Pagination[T any] struct {
		Page       int64 `json:"page"`
		Per        int64 `json:"per"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"total_pages"`
		Items      []T   `json:"items"`
	}
)

// Store persists release metadata keyed by (name, version).
type Store interface {
	// Get returns ErrNotFound if no record matches.
	Get(ctx context.Context, name, version string) (*Release, error)
	// Insert returns the store-assigned id; ErrConflict on a duplicate key.
	Insert(ctx context.Context, r *Release) (string, error)
	// List returns records sorted by name ascending and version descending.
	List(ctx context.Context, skip, limit int64) ([]*Release, error)
	Count(ctx context.Context) (int64, error)
	Names(ctx context.Context) ([]string, error)
	Versions(ctx context.Context, name string) ([]string, error)
	// Delete returns the number of removed records.
	Delete(ctx context.Context, name, version string) (int64, error)
}

// Storage holds release file contents by key.
// Implementations must be safe for concurrent use.
type Storage interface {
	Write(ctx context.Context, key string, r io.Reader, contentType string) error
	// Delete returns nil if the key does not exist.
	Delete(ctx context.Context, key string) error
}

// TotalPages always reports one trailing page, so 10 items at 10 per page
// are reported as 2 pages and an empty collection as 1.
func TotalPages(total, per int64) int64 {
	return total/per + 1
}
