package client

import (
	"context"
	"time"
)

type RunMode string

const (
	RunModePreview  RunMode = "preview"
	RunModeSimulate RunMode = "simulate"
	RunModeImport   RunMode = "import"
)

// ImportRun is the audit record of one preview, simulation or import call.
type ImportRun struct {
	ID             string
	Mode           RunMode
	UserID         string
	Role           Role
	TotalRows      int
	NewCount       int
	DuplicateCount int
	ErrorCount     int
	CreatedCount   int
	UpdatedCount   int
	SkippedCount   int
	FailedCount    int
	StartedAt      time.Time
	FinishedAt     time.Time
}

type ImportRunRepository interface {
	Record(ctx context.Context, run ImportRun) error
}
