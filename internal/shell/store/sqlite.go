package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/stacker/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Application Operations
// =============================================================================

// applicationRow represents an application row in the database.
type applicationRow struct {
	ID           int     `db:"id"`
	ReferenceID  string  `db:"reference_id"`
	Name         string  `db:"name"`
	Slug         string  `db:"slug"`
	ComposeFile  string  `db:"compose_file"`
	ValueSources *string `db:"value_sources"`
	Status       string  `db:"status"`
	CreatedAt    string  `db:"created_at"`
	UpdatedAt    string  `db:"updated_at"`
}

func (s *SQLiteStore) CreateApplication(ctx context.Context, app *domain.Application) error {
	return createApplication(ctx, s.db, app)
}

func (s *SQLiteStore) GetApplication(ctx context.Context, referenceID string) (*domain.Application, error) {
	return getApplication(ctx, s.db, referenceID)
}

func (s *SQLiteStore) GetApplicationByName(ctx context.Context, name string) (*domain.Application, error) {
	return getApplicationByName(ctx, s.db, name)
}

func (s *SQLiteStore) UpdateApplication(ctx context.Context, app *domain.Application) error {
	return updateApplication(ctx, s.db, app)
}

func (s *SQLiteStore) DeleteApplication(ctx context.Context, referenceID string) error {
	return deleteApplication(ctx, s.db, referenceID)
}

func (s *SQLiteStore) ListApplications(ctx context.Context, opts ListOptions) ([]domain.Application, error) {
	return listApplications(ctx, s.db, opts)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateApplication(ctx context.Context, app *domain.Application) error {
	return createApplication(ctx, s.tx, app)
}

func (s *txSQLiteStore) GetApplication(ctx context.Context, referenceID string) (*domain.Application, error) {
	return getApplication(ctx, s.tx, referenceID)
}

func (s *txSQLiteStore) GetApplicationByName(ctx context.Context, name string) (*domain.Application, error) {
	return getApplicationByName(ctx, s.tx, name)
}

func (s *txSQLiteStore) UpdateApplication(ctx context.Context, app *domain.Application) error {
	return updateApplication(ctx, s.tx, app)
}

func (s *txSQLiteStore) DeleteApplication(ctx context.Context, referenceID string) error {
	return deleteApplication(ctx, s.tx, referenceID)
}

func (s *txSQLiteStore) ListApplications(ctx context.Context, opts ListOptions) ([]domain.Application, error) {
	return listApplications(ctx, s.tx, opts)
}

// Nested transactions are not supported; reuse the same transaction.
func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	return nil
}

// =============================================================================
// Query Implementations
// =============================================================================

func createApplication(ctx context.Context, exec executor, app *domain.Application) error {
	sourcesJSON, err := json.Marshal(app.ValueSources)
	if err != nil {
		return NewStoreError("CreateApplication", "application", app.ReferenceID, "failed to serialize value sources", ErrInvalidData)
	}

	query := `
		INSERT INTO applications (
			reference_id, name, slug, compose_file, value_sources, status,
			created_at, updated_at
		) VALUES (
			:reference_id, :name, :slug, :compose_file, :value_sources, :status,
			:created_at, :updated_at
		)`

	row := map[string]any{
		"reference_id":  app.ReferenceID,
		"name":          app.Name,
		"slug":          app.Slug,
		"compose_file":  app.ComposeFile,
		"value_sources": string(sourcesJSON),
		"status":        string(app.Status),
		"created_at":    app.CreatedAt.Format(time.RFC3339),
		"updated_at":    app.UpdatedAt.Format(time.RFC3339),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: applications.reference_id") {
			return NewStoreError("CreateApplication", "application", app.ReferenceID, "application with this ID already exists", ErrDuplicateID)
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: applications.name") {
			return NewStoreError("CreateApplication", "application", app.ReferenceID, "application with this name already exists", ErrDuplicateName)
		}
		return NewStoreError("CreateApplication", "application", app.ReferenceID, err.Error(), err)
	}

	if id, err := result.LastInsertId(); err == nil {
		app.ID = int(id)
	}

	return nil
}

func getApplication(ctx context.Context, exec executor, referenceID string) (*domain.Application, error) {
	query := `SELECT * FROM applications WHERE reference_id = ?`

	var row applicationRow
	err := exec.GetContext(ctx, &row, query, referenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetApplication", "application", referenceID, "application not found", ErrNotFound)
		}
		return nil, NewStoreError("GetApplication", "application", referenceID, err.Error(), err)
	}

	return rowToApplication(&row)
}

func getApplicationByName(ctx context.Context, exec executor, name string) (*domain.Application, error) {
	query := `SELECT * FROM applications WHERE name = ?`

	var row applicationRow
	err := exec.GetContext(ctx, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetApplicationByName", "application", name, "application not found", ErrNotFound)
		}
		return nil, NewStoreError("GetApplicationByName", "application", name, err.Error(), err)
	}

	return rowToApplication(&row)
}

func updateApplication(ctx context.Context, exec executor, app *domain.Application) error {
	sourcesJSON, err := json.Marshal(app.ValueSources)
	if err != nil {
		return NewStoreError("UpdateApplication", "application", app.ReferenceID, "failed to serialize value sources", ErrInvalidData)
	}

	query := `
		UPDATE applications SET
			name = :name,
			slug = :slug,
			compose_file = :compose_file,
			value_sources = :value_sources,
			status = :status,
			updated_at = :updated_at
		WHERE reference_id = :reference_id`

	row := map[string]any{
		"reference_id":  app.ReferenceID,
		"name":          app.Name,
		"slug":          app.Slug,
		"compose_file":  app.ComposeFile,
		"value_sources": string(sourcesJSON),
		"status":        string(app.Status),
		"updated_at":    app.UpdatedAt.Format(time.RFC3339),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: applications.name") {
			return NewStoreError("UpdateApplication", "application", app.ReferenceID, "application with this name already exists", ErrDuplicateName)
		}
		return NewStoreError("UpdateApplication", "application", app.ReferenceID, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateApplication", "application", app.ReferenceID, "application not found", ErrNotFound)
	}

	return nil
}

func deleteApplication(ctx context.Context, exec executor, referenceID string) error {
	query := `DELETE FROM applications WHERE reference_id = ?`

	result, err := exec.ExecContext(ctx, query, referenceID)
	if err != nil {
		return NewStoreError("DeleteApplication", "application", referenceID, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteApplication", "application", referenceID, "application not found", ErrNotFound)
	}

	return nil
}

func listApplications(ctx context.Context, exec executor, opts ListOptions) ([]domain.Application, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM applications ORDER BY created_at DESC LIMIT ? OFFSET ?`

	var rows []applicationRow
	err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewStoreError("ListApplications", "application", "", err.Error(), err)
	}

	apps := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		app, err := rowToApplication(&row)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}

	return apps, nil
}

// rowToApplication converts a database row to a domain.Application.
func rowToApplication(row *applicationRow) (*domain.Application, error) {
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)

	var sources []string
	if row.ValueSources != nil && *row.ValueSources != "" && *row.ValueSources != "null" {
		if err := json.Unmarshal([]byte(*row.ValueSources), &sources); err != nil {
			return nil, NewStoreError("rowToApplication", "application", row.ReferenceID, "failed to parse value sources", ErrInvalidData)
		}
	}

	return &domain.Application{
		ID:           row.ID,
		ReferenceID:  row.ReferenceID,
		Name:         row.Name,
		Slug:         row.Slug,
		ComposeFile:  row.ComposeFile,
		ValueSources: sources,
		Status:       domain.ApplicationStatus(row.Status),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
