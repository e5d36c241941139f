// Package store keeps named saves of a document pair in a local SQLite
// database, keyed by project and save name.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no save matches the project and name.
	ErrNotFound = errors.New("save not found")
	// ErrNotOpen is returned when the store has no open database.
	ErrNotOpen = errors.New("database not opened")
	// ErrInvalidKey is returned for an empty project or save name.
	ErrInvalidKey = errors.New("project and save name must not be empty")
)

// Save is a stored document pair.
type Save struct {
	ID          string
	Project     string
	Name        string
	AppConfig   []byte
	EntityGraph []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary describes a save without its payload.
type Summary struct {
	ID        string
	Project   string
	Name      string
	Size      int
	UpdatedAt time.Time
}

// Store persists saves.
type Store interface {
	// Put creates or overwrites the save (project, name).
	Put(ctx context.Context, project, name string, app, graph []byte) (*Save, error)
	Get(ctx context.Context, project, name string) (*Save, error)
	// List returns the saves of project, most recently updated first. An
	// empty project lists every save.
	List(ctx context.Context, project string) ([]Summary, error)
	Delete(ctx context.Context, project, name string) error
	Close() error
}
