package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Foreign keys are a connection-level setting
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
}

// CommitTx commits a transaction
func (s *SQLiteStore) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// RollbackTx rolls back a transaction
func (s *SQLiteStore) RollbackTx(tx *sql.Tx) error {
	return tx.Rollback()
}

// CreateBuild creates a new build record
func (s *SQLiteStore) CreateBuild(ctx context.Context, build *Build) error {
	query := `
		INSERT INTO builds (id, product_type, engine, units, status, error, operations_count,
			duration_ns, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		build.ID,
		build.ProductType,
		build.Engine,
		build.Units,
		build.Status,
		build.Error,
		build.OperationsCount,
		build.Duration,
		build.StartedAt,
		build.CompletedAt,
		build.CreatedAt,
		build.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create build: %w", err)
	}

	return nil
}

// GetBuild retrieves a build by ID
func (s *SQLiteStore) GetBuild(ctx context.Context, id string) (*Build, error) {
	query := `
		SELECT id, product_type, engine, units, status, error, operations_count,
			   duration_ns, started_at, completed_at, created_at, updated_at
		FROM builds
		WHERE id = ?
	`

	build := &Build{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&build.ID,
		&build.ProductType,
		&build.Engine,
		&build.Units,
		&build.Status,
		&build.Error,
		&build.OperationsCount,
		&build.Duration,
		&build.StartedAt,
		&build.CompletedAt,
		&build.CreatedAt,
		&build.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("build not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}

	return build, nil
}

// FinishBuild marks a build as completed or failed
func (s *SQLiteStore) FinishBuild(ctx context.Context, id string, status BuildStatus, errMsg *string, duration time.Duration, opCount int) error {
	query := `
		UPDATE builds
		SET status = ?, error = ?, duration_ns = ?, operations_count = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query, status, errMsg, duration.Nanoseconds(), opCount, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to finish build: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("build not found: %s", id)
	}

	return nil
}

// ListBuilds lists builds with pagination, newest first
func (s *SQLiteStore) ListBuilds(ctx context.Context, limit, offset int) ([]*Build, error) {
	query := `
		SELECT id, product_type, engine, units, status, error, operations_count,
			   duration_ns, started_at, completed_at, created_at, updated_at
		FROM builds
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	builds := []*Build{}
	for rows.Next() {
		build := &Build{}
		err := rows.Scan(
			&build.ID,
			&build.ProductType,
			&build.Engine,
			&build.Units,
			&build.Status,
			&build.Error,
			&build.OperationsCount,
			&build.Duration,
			&build.StartedAt,
			&build.CompletedAt,
			&build.CreatedAt,
			&build.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		builds = append(builds, build)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating builds: %w", err)
	}

	return builds, nil
}

// DeleteBuild deletes a build and its dependent rows
func (s *SQLiteStore) DeleteBuild(ctx context.Context, id string) error {
	query := `DELETE FROM builds WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete build: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("build not found: %s", id)
	}

	return nil
}

// AppendOperation records one executed operation
func (s *SQLiteStore) AppendOperation(ctx context.Context, op *BuildOperation) error {
	query := `
		INSERT INTO build_operations (build_id, op_index, kind, engine, status, duration_ns, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		op.BuildID,
		op.OpIndex,
		op.Kind,
		op.Engine,
		op.Status,
		op.Duration,
		op.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to append operation: %w", err)
	}

	op.ID, _ = result.LastInsertId()
	return nil
}

// ListOperationsByBuild lists a build's operations in execution order
func (s *SQLiteStore) ListOperationsByBuild(ctx context.Context, buildID string) ([]*BuildOperation, error) {
	query := `
		SELECT id, build_id, op_index, kind, engine, status, duration_ns, error
		FROM build_operations
		WHERE build_id = ?
		ORDER BY op_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	ops := []*BuildOperation{}
	for rows.Next() {
		op := &BuildOperation{}
		err := rows.Scan(
			&op.ID,
			&op.BuildID,
			&op.OpIndex,
			&op.Kind,
			&op.Engine,
			&op.Status,
			&op.Duration,
			&op.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	return ops, nil
}

// AddExportFile records one exported artifact
func (s *SQLiteStore) AddExportFile(ctx context.Context, file *ExportFile) error {
	query := `
		INSERT INTO export_files (build_id, format, path, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		file.BuildID,
		file.Format,
		file.Path,
		file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add export file: %w", err)
	}

	file.ID, _ = result.LastInsertId()
	return nil
}

// ListFilesByBuild lists a build's exported artifacts
func (s *SQLiteStore) ListFilesByBuild(ctx context.Context, buildID string) ([]*ExportFile, error) {
	query := `
		SELECT id, build_id, format, path, created_at
		FROM export_files
		WHERE build_id = ?
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list export files: %w", err)
	}
	defer rows.Close()

	files := []*ExportFile{}
	for rows.Next() {
		file := &ExportFile{}
		err := rows.Scan(
			&file.ID,
			&file.BuildID,
			&file.Format,
			&file.Path,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export files: %w", err)
	}

	return files, nil
}

// AddEngineSwitch records a mid-build engine fallback
func (s *SQLiteStore) AddEngineSwitch(ctx context.Context, sw *EngineSwitch) error {
	query := `
		INSERT INTO engine_switches (build_id, op_index, kind, from_engine, to_engine)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		sw.BuildID,
		sw.OpIndex,
		sw.Kind,
		sw.FromEngine,
		sw.ToEngine,
	)
	if err != nil {
		return fmt.Errorf("failed to add engine switch: %w", err)
	}

	sw.ID, _ = result.LastInsertId()
	return nil
}

// ListSwitchesByBuild lists a build's engine switches
func (s *SQLiteStore) ListSwitchesByBuild(ctx context.Context, buildID string) ([]*EngineSwitch, error) {
	query := `
		SELECT id, build_id, op_index, kind, from_engine, to_engine
		FROM engine_switches
		WHERE build_id = ?
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list engine switches: %w", err)
	}
	defer rows.Close()

	switches := []*EngineSwitch{}
	for rows.Next() {
		sw := &EngineSwitch{}
		err := rows.Scan(
			&sw.ID,
			&sw.BuildID,
			&sw.OpIndex,
			&sw.Kind,
			&sw.FromEngine,
			&sw.ToEngine,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan engine switch: %w", err)
		}
		switches = append(switches, sw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engine switches: %w", err)
	}

	return switches, nil
}

// HealthCheck verifies the database is reachable
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}
