package stores

import (
	"context"
	"testing"
	"time"

	"github.com/forgecad/forgecad/pkg/kernel"
	"github.com/forgecad/forgecad/pkg/pipeline"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() { store.Close() })
	return store
}

func testBuild(id string) *Build {
	now := time.Now()
	return &Build{
		ID:          id,
		ProductType: "box",
		Engine:      "solid",
		Units:       "mm",
		Status:      BuildStatusRunning,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestCreateAndGetBuild(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	build := testBuild("build-1")
	if err := store.CreateBuild(ctx, build); err != nil {
		t.Fatalf("CreateBuild failed: %v", err)
	}

	got, err := store.GetBuild(ctx, "build-1")
	if err != nil {
		t.Fatalf("GetBuild failed: %v", err)
	}
	if got.ProductType != "box" || got.Engine != "solid" {
		t.Errorf("Expected box on solid, got %s on %s", got.ProductType, got.Engine)
	}
	if got.Status != BuildStatusRunning {
		t.Errorf("Expected status running, got %s", got.Status)
	}

	if _, err := store.GetBuild(ctx, "missing"); err == nil {
		t.Error("Expected error for missing build")
	}
}

func TestFinishBuild(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateBuild(ctx, testBuild("build-1")); err != nil {
		t.Fatalf("CreateBuild failed: %v", err)
	}

	msg := "operation failed"
	err := store.FinishBuild(ctx, "build-1", BuildStatusFailed, &msg, 250*time.Millisecond, 3)
	if err != nil {
		t.Fatalf("FinishBuild failed: %v", err)
	}

	got, err := store.GetBuild(ctx, "build-1")
	if err != nil {
		t.Fatalf("GetBuild failed: %v", err)
	}
	if got.Status != BuildStatusFailed {
		t.Errorf("Expected status failed, got %s", got.Status)
	}
	if got.Error == nil || *got.Error != msg {
		t.Errorf("Expected error %q, got %v", msg, got.Error)
	}
	if got.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}
	if got.Duration != (250 * time.Millisecond).Nanoseconds() {
		t.Errorf("Expected duration 250ms, got %d", got.Duration)
	}

	if err := store.FinishBuild(ctx, "missing", BuildStatusCompleted, nil, 0, 0); err == nil {
		t.Error("Expected error for missing build")
	}
}

func TestListBuildsNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"old", "mid", "new"} {
		build := testBuild(id)
		build.StartedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.CreateBuild(ctx, build); err != nil {
			t.Fatalf("CreateBuild failed: %v", err)
		}
	}

	builds, err := store.ListBuilds(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListBuilds failed: %v", err)
	}
	if len(builds) != 3 {
		t.Fatalf("Expected 3 builds, got %d", len(builds))
	}
	if builds[0].ID != "new" || builds[2].ID != "old" {
		t.Errorf("Expected newest first, got %s, %s, %s", builds[0].ID, builds[1].ID, builds[2].ID)
	}

	page, err := store.ListBuilds(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ListBuilds failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "mid" {
		t.Errorf("Expected paginated result mid, got %v", page)
	}
}

func TestOperationLog(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateBuild(ctx, testBuild("build-1")); err != nil {
		t.Fatalf("CreateBuild failed: %v", err)
	}

	kinds := []string{"SketchRectangle", "Extrude", "Cut"}
	for i, kind := range kinds {
		op := &BuildOperation{
			BuildID:  "build-1",
			OpIndex:  i,
			Kind:     kind,
			Engine:   "solid",
			Status:   "success",
			Duration: int64(i+1) * 1000,
		}
		if err := store.AppendOperation(ctx, op); err != nil {
			t.Fatalf("AppendOperation failed: %v", err)
		}
		if op.ID == 0 {
			t.Error("Expected operation ID to be assigned")
		}
	}

	ops, err := store.ListOperationsByBuild(ctx, "build-1")
	if err != nil {
		t.Fatalf("ListOperationsByBuild failed: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("Expected 3 operations, got %d", len(ops))
	}
	for i, op := range ops {
		if op.OpIndex != i || op.Kind != kinds[i] {
			t.Errorf("Expected %s at %d, got %s at %d", kinds[i], i, op.Kind, op.OpIndex)
		}
	}
}

func TestExportFilesAndSwitches(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateBuild(ctx, testBuild("build-1")); err != nil {
		t.Fatalf("CreateBuild failed: %v", err)
	}

	file := &ExportFile{
		BuildID:   "build-1",
		Format:    "step",
		Path:      "output/build-1.step",
		CreatedAt: time.Now(),
	}
	if err := store.AddExportFile(ctx, file); err != nil {
		t.Fatalf("AddExportFile failed: %v", err)
	}

	files, err := store.ListFilesByBuild(ctx, "build-1")
	if err != nil {
		t.Fatalf("ListFilesByBuild failed: %v", err)
	}
	if len(files) != 1 || files[0].Format != "step" {
		t.Errorf("Expected one step file, got %v", files)
	}

	sw := &EngineSwitch{
		BuildID:    "build-1",
		OpIndex:    2,
		Kind:       "Revolve",
		FromEngine: "workplane",
		ToEngine:   "solid",
	}
	if err := store.AddEngineSwitch(ctx, sw); err != nil {
		t.Fatalf("AddEngineSwitch failed: %v", err)
	}

	switches, err := store.ListSwitchesByBuild(ctx, "build-1")
	if err != nil {
		t.Fatalf("ListSwitchesByBuild failed: %v", err)
	}
	if len(switches) != 1 || switches[0].ToEngine != "solid" {
		t.Errorf("Expected one switch to solid, got %v", switches)
	}
}

func TestDeleteBuildCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateBuild(ctx, testBuild("build-1")); err != nil {
		t.Fatalf("CreateBuild failed: %v", err)
	}
	op := &BuildOperation{BuildID: "build-1", OpIndex: 0, Kind: "Extrude", Engine: "solid", Status: "success"}
	if err := store.AppendOperation(ctx, op); err != nil {
		t.Fatalf("AppendOperation failed: %v", err)
	}

	if err := store.DeleteBuild(ctx, "build-1"); err != nil {
		t.Fatalf("DeleteBuild failed: %v", err)
	}

	ops, err := store.ListOperationsByBuild(ctx, "build-1")
	if err != nil {
		t.Fatalf("ListOperationsByBuild failed: %v", err)
	}
	if len(ops) != 0 {
		t.Errorf("Expected cascade delete of operations, got %d", len(ops))
	}

	if err := store.DeleteBuild(ctx, "build-1"); err == nil {
		t.Error("Expected error deleting missing build")
	}
}

func TestSaveResult(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	res := &pipeline.Result{
		Success: true,
		BuildID: "build-save",
		Engine:  "solid",
		Operations: []pipeline.LogEntry{
			{Index: 0, Kind: kernel.OpSketchRectangle, Status: pipeline.OpStatusSuccess, Engine: "workplane", Duration: time.Millisecond},
			{Index: 1, Kind: kernel.OpRevolve, Status: pipeline.OpStatusSuccess, Engine: "solid", Duration: 2 * time.Millisecond},
		},
		OperationsCount: 2,
		EngineSwitches: []pipeline.EngineSwitch{
			{Index: 1, Kind: kernel.OpRevolve, From: "workplane", To: "solid"},
		},
		Files:       []string{"output/build-save.step", "output/build-save.stl"},
		FailedIndex: -1,
		FinalState:  pipeline.StateHasSolid,
		Duration:    5 * time.Millisecond,
	}
	if err := SaveResult(ctx, store, "vase", "mm", res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	build, err := store.GetBuild(ctx, "build-save")
	if err != nil {
		t.Fatalf("GetBuild failed: %v", err)
	}
	if build.Status != BuildStatusCompleted {
		t.Errorf("Expected status completed, got %s", build.Status)
	}
	if build.ProductType != "vase" {
		t.Errorf("Expected product type vase, got %q", build.ProductType)
	}

	ops, err := store.ListOperationsByBuild(ctx, "build-save")
	if err != nil {
		t.Fatalf("ListOperationsByBuild failed: %v", err)
	}
	if len(ops) != 2 {
		t.Errorf("Expected 2 operations, got %d", len(ops))
	}

	files, err := store.ListFilesByBuild(ctx, "build-save")
	if err != nil {
		t.Fatalf("ListFilesByBuild failed: %v", err)
	}
	if len(files) != 2 || files[0].Format != "step" || files[1].Format != "stl" {
		t.Errorf("Expected step and stl files, got %v", files)
	}

	switches, err := store.ListSwitchesByBuild(ctx, "build-save")
	if err != nil {
		t.Fatalf("ListSwitchesByBuild failed: %v", err)
	}
	if len(switches) != 1 || switches[0].FromEngine != "workplane" {
		t.Errorf("Expected one switch from workplane, got %v", switches)
	}
}

func TestSaveFailedResult(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	res := &pipeline.Result{
		Success: false,
		BuildID: "build-bad",
		Engine:  "solid",
		Operations: []pipeline.LogEntry{
			{Index: 0, Kind: kernel.OpExtrude, Status: pipeline.OpStatusFailed, Engine: "solid", Error: "no profile to transform"},
		},
		OperationsCount: 1,
		Error:           "no profile to transform",
		FailedIndex:     0,
		FinalState:      pipeline.StateFailed,
	}
	if err := SaveResult(ctx, store, "", "mm", res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	build, err := store.GetBuild(ctx, "build-bad")
	if err != nil {
		t.Fatalf("GetBuild failed: %v", err)
	}
	if build.Status != BuildStatusFailed {
		t.Errorf("Expected status failed, got %s", build.Status)
	}
	if build.Error == nil || *build.Error != "no profile to transform" {
		t.Errorf("Expected failure reason, got %v", build.Error)
	}

	ops, err := store.ListOperationsByBuild(ctx, "build-bad")
	if err != nil {
		t.Fatalf("ListOperationsByBuild failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Error == nil {
		t.Errorf("Expected one failed operation with error, got %v", ops)
	}
}
