package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger for store operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *SQLiteStore) { s.logger = l }
}

// NewSQLiteStore returns a closed store.
func NewSQLiteStore(opts ...Option) *SQLiteStore {
	s := &SQLiteStore{
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the database at path and applies pending migrations.
// Use ":memory:" for an in-memory database.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	s := NewSQLiteStore(opts...)
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := MigrateWithDB(s.db); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens a connection to the SQLite database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	s.db = db
	s.path = path
	s.logger.Debug("store opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

func generateID() string {
	return uuid.New().String()
}

func checkKey(project, name string) error {
	if project == "" || name == "" {
		return ErrInvalidKey
	}
	return nil
}

// Put creates or overwrites a save. Overwriting keeps the id and creation time.
func (s *SQLiteStore) Put(ctx context.Context, project, name string, app, graph []byte) (*Save, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if err := checkKey(project, name); err != nil {
		return nil, err
	}
	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (id, project, name, app_config, entity_graph, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project, name) DO UPDATE SET
			app_config = excluded.app_config,
			entity_graph = excluded.entity_graph,
			updated_at = excluded.updated_at`,
		generateID(), project, name, app, graph, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to put save %s/%s: %w", project, name, err)
	}
	s.logger.Info("save stored", "project", project, "name", name, "bytes", len(app)+len(graph))
	return s.Get(ctx, project, name)
}

// Get returns the save (project, name) or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, project, name string) (*Save, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	sv := &Save{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project, name, app_config, entity_graph, created_at, updated_at
		FROM saves WHERE project = ? AND name = ?`,
		project, name,
	).Scan(&sv.ID, &sv.Project, &sv.Name, &sv.AppConfig, &sv.EntityGraph, &sv.CreatedAt, &sv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", project, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get save %s/%s: %w", project, name, err)
	}
	return sv, nil
}

// List returns save summaries, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, project string) ([]Summary, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project, name, length(app_config) + length(entity_graph), updated_at
		FROM saves WHERE ? = '' OR project = ?
		ORDER BY updated_at DESC, project, name`,
		project, project,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Project, &sm.Name, &sm.Size, &sm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Delete removes the save (project, name) or returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, project, name string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE project = ? AND name = ?`, project, name)
	if err != nil {
		return fmt.Errorf("failed to delete save %s/%s: %w", project, name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", project, name, ErrNotFound)
	}
	s.logger.Info("save deleted", "project", project, "name", name)
	return nil
}
