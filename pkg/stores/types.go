package stores

import (
	"context"
	"database/sql"
	"time"
)

// BuildStatus represents the status of a recorded build.
type BuildStatus string

const (
	BuildStatusRunning   BuildStatus = "running"
	BuildStatusCompleted BuildStatus = "completed"
	BuildStatusFailed    BuildStatus = "failed"
)

// Build is one build record.
type Build struct {
	ID              string      `json:"id"`
	ProductType     string      `json:"product_type"`
	Engine          string      `json:"engine"`
	Units           string      `json:"units"`
	Status          BuildStatus `json:"status"`
	Error           *string     `json:"error,omitempty"`
	OperationsCount int         `json:"operations_count"`
	Duration        int64       `json:"duration_ns"`
	StartedAt       time.Time   `json:"started_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// BuildOperation is one executed operation within a build.
type BuildOperation struct {
	ID       int64   `json:"id"`
	BuildID  string  `json:"build_id"`
	OpIndex  int     `json:"op_index"`
	Kind     string  `json:"kind"`
	Engine   string  `json:"engine"`
	Status   string  `json:"status"`
	Duration int64   `json:"duration_ns"`
	Error    *string `json:"error,omitempty"`
}

// ExportFile is one artifact written by a build.
type ExportFile struct {
	ID        int64     `json:"id"`
	BuildID   string    `json:"build_id"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// EngineSwitch records a mid-build fallback from one engine to another.
type EngineSwitch struct {
	ID         int64  `json:"id"`
	BuildID    string `json:"build_id"`
	OpIndex    int    `json:"op_index"`
	Kind       string `json:"kind"`
	FromEngine string `json:"from_engine"`
	ToEngine   string `json:"to_engine"`
}

// Store defines the interface for the build history layer.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error

	// Build operations
	CreateBuild(ctx context.Context, build *Build) error
	GetBuild(ctx context.Context, id string) (*Build, error)
	FinishBuild(ctx context.Context, id string, status BuildStatus, errMsg *string, duration time.Duration, opCount int) error
	ListBuilds(ctx context.Context, limit, offset int) ([]*Build, error)
	DeleteBuild(ctx context.Context, id string) error

	// Operation log
	AppendOperation(ctx context.Context, op *BuildOperation) error
	ListOperationsByBuild(ctx context.Context, buildID string) ([]*BuildOperation, error)

	// Export files
	AddExportFile(ctx context.Context, file *ExportFile) error
	ListFilesByBuild(ctx context.Context, buildID string) ([]*ExportFile, error)

	// Engine switches
	AddEngineSwitch(ctx context.Context, sw *EngineSwitch) error
	ListSwitchesByBuild(ctx context.Context, buildID string) ([]*EngineSwitch, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
