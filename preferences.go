package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "modernc.org/sqlite"
)

// Theme is the widget colour scheme, the only persisted user preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrUnknownTheme is returned for theme names other than light and dark
var ErrUnknownTheme = errors.New("unknown theme")

const themeKey = "theme"

// ParseTheme validates a theme name
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// PreferenceStore persists the theme preference
type PreferenceStore interface {
	Theme(ctx context.Context) (Theme, error)
	SetTheme(ctx context.Context, theme Theme) error
	Close() error
}

// NewPreferenceStore opens SQLite at dbPath, or an in-memory store when dbPath is empty
func NewPreferenceStore(dbPath string) (PreferenceStore, error) {
	if dbPath == "" {
		return NewMemoryPreferenceStore(), nil
	}
	return NewSQLitePreferenceStore(dbPath)
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// runMigrations applies the embedded schema on a separate connection
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// SQLitePreferenceStore keeps preferences in a key/value table
type SQLitePreferenceStore struct {
	db *sql.DB
}

// NewSQLitePreferenceStore opens (and migrates) the database at dbPath
func NewSQLitePreferenceStore(dbPath string) (*SQLitePreferenceStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLitePreferenceStore{db: db}, nil
}

// Theme returns the stored theme, or light when none has been saved
func (s *SQLitePreferenceStore) Theme(ctx context.Context) (Theme, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, themeKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	return ParseTheme(value)
}

// SetTheme stores the theme
func (s *SQLitePreferenceStore) SetTheme(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		themeKey, string(theme))
	if err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	slog.DebugContext(ctx, "theme saved", "theme", theme)
	return nil
}

// Close closes the database
func (s *SQLitePreferenceStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// MemoryPreferenceStore keeps preferences for the lifetime of the process
type MemoryPreferenceStore struct {
	mu    sync.RWMutex
	theme Theme
}

// NewMemoryPreferenceStore returns a store defaulting to the light theme
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{theme: ThemeLight}
}

func (m *MemoryPreferenceStore) Theme(ctx context.Context) (Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.theme, nil
}

func (m *MemoryPreferenceStore) SetTheme(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	m.mu.Lock()
	m.theme = theme
	m.mu.Unlock()
	return nil
}

func (m *MemoryPreferenceStore) Close() error { return nil }
