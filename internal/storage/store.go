// internal/storage/store.go
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"

	"print-agent/internal/model"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Store is the agent's local persistence: a key-value settings table
// for saved printer and layout, and a print job history table. Backed
// by an embedded SQLite database so the agent has no external
// infrastructure requirements.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if necessary) the database at path and applies
// the schema. The schema only uses IF NOT EXISTS so reopening an
// existing database is a no-op.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logger.Info("Storage opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSetting reads a settings value; ErrNotFound when the key is absent
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// PutSetting writes a settings value, replacing any existing value
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a settings value; deleting an absent key is not
// an error
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// InsertJob records a new print job
func (s *Store) InsertJob(ctx context.Context, job *model.PrintJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO print_jobs (
			id, sale_id, device_name, device_address, mode,
			status, error_message, duration_ms, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		job.ID.String(), job.SaleID, job.DeviceName, job.DeviceAddress, string(job.Mode),
		string(job.Status), job.ErrorMessage, job.DurationMs, job.CreatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert print job: %w", err)
	}
	return nil
}

// UpdateJob persists the outcome of a print job
func (s *Store) UpdateJob(ctx context.Context, job *model.PrintJob) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE print_jobs
		SET device_name = $1, device_address = $2, mode = $3, status = $4,
		    error_message = $5, duration_ms = $6, completed_at = $7
		WHERE id = $8
	`,
		job.DeviceName, job.DeviceAddress, string(job.Mode), string(job.Status),
		job.ErrorMessage, job.DurationMs, job.CompletedAt, job.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update print job: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetJob retrieves a print job by ID
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sale_id, device_name, device_address, mode,
		       status, error_message, duration_ms, created_at, completed_at
		FROM print_jobs WHERE id = $1
	`, id.String())

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read print job: %w", err)
	}
	return job, nil
}

// ListJobs returns the most recent print jobs, newest first
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*model.PrintJob, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, device_name, device_address, mode,
		       status, error_message, duration_ms, created_at, completed_at
		FROM print_jobs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*model.PrintJob, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan print job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate print jobs: %w", err)
	}
	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.PrintJob, error) {
	var (
		job  model.PrintJob
		id   string
		mode string
	)
	err := row.Scan(
		&id, &job.SaleID, &job.DeviceName, &job.DeviceAddress, &mode,
		(*string)(&job.Status), &job.ErrorMessage, &job.DurationMs,
		&job.CreatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("malformed job id %q: %w", id, err)
	}
	job.ID = parsed
	job.Mode = model.PrintMode(mode)
	return &job, nil
}
