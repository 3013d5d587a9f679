package stores

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgecad/forgecad/pkg/pipeline"
)

// SaveResult records a finished build result: the build row plus its
// operation log, exported files, and engine switches.
func SaveResult(ctx context.Context, s Store, productType, units string, res *pipeline.Result) error {
	now := time.Now()

	status := BuildStatusCompleted
	var errMsg *string
	if !res.Success {
		status = BuildStatusFailed
		msg := res.Error
		errMsg = &msg
	}

	completedAt := now
	build := &Build{
		ID:              res.BuildID,
		ProductType:     productType,
		Engine:          res.Engine,
		Units:           units,
		Status:          status,
		Error:           errMsg,
		OperationsCount: res.OperationsCount,
		Duration:        res.Duration.Nanoseconds(),
		StartedAt:       now.Add(-res.Duration),
		CompletedAt:     &completedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.CreateBuild(ctx, build); err != nil {
		return err
	}

	for _, entry := range res.Operations {
		var opErr *string
		if entry.Error != "" {
			msg := entry.Error
			opErr = &msg
		}
		op := &BuildOperation{
			BuildID:  res.BuildID,
			OpIndex:  entry.Index,
			Kind:     string(entry.Kind),
			Engine:   entry.Engine,
			Status:   string(entry.Status),
			Duration: entry.Duration.Nanoseconds(),
			Error:    opErr,
		}
		if err := s.AppendOperation(ctx, op); err != nil {
			return fmt.Errorf("failed to record operation %d: %w", entry.Index, err)
		}
	}

	for _, path := range res.Files {
		file := &ExportFile{
			BuildID:   res.BuildID,
			Format:    strings.TrimPrefix(filepath.Ext(path), "."),
			Path:      path,
			CreatedAt: now,
		}
		if err := s.AddExportFile(ctx, file); err != nil {
			return fmt.Errorf("failed to record export file %s: %w", path, err)
		}
	}

	for _, sw := range res.EngineSwitches {
		rec := &EngineSwitch{
			BuildID:    res.BuildID,
			OpIndex:    sw.Index,
			Kind:       string(sw.Kind),
			FromEngine: sw.From,
			ToEngine:   sw.To,
		}
		if err := s.AddEngineSwitch(ctx, rec); err != nil {
			return fmt.Errorf("failed to record engine switch: %w", err)
		}
	}

	return nil
}
