package clientimport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

const tracerName = "github.com/mohammadpnp/client-import/internal/application/clientimport"

type Config struct {
	MaxRows int
}

func (c Config) withDefaults() Config {
	if c.MaxRows <= 0 {
		c.MaxRows = 5000
	}
	return c
}

// engine holds what preview, simulation and import share: batch checks, the
// existing-record index and classification.
type engine struct {
	source    domain.ExistingRecordSource
	runs      domain.ImportRunRepository
	validator *rowValidator
	logger    *zap.Logger
	tracer    trace.Tracer
	cfg       Config
	now       func() time.Time
	newID     func() string
}

func newEngine(source domain.ExistingRecordSource, runs domain.ImportRunRepository, logger *zap.Logger, cfg Config) *engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &engine{
		source:    source,
		runs:      runs,
		validator: newRowValidator(),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

type classifiedBatch struct {
	prepared []preparedRow
	items    []domain.PreviewItem
	index    *Index
	summary  domain.PreviewSummary
}

func (e *engine) checkBatch(scope domain.Scope, rows []Row) error {
	if strings.TrimSpace(scope.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidScope)
	}
	if len(rows) == 0 {
		return ErrEmptyBatch
	}
	if len(rows) > e.cfg.MaxRows {
		return fmt.Errorf("%w: %d rows, limit is %d", ErrBatchTooLarge, len(rows), e.cfg.MaxRows)
	}
	return nil
}

func (e *engine) classifyBatch(ctx context.Context, mode domain.RunMode, scope domain.Scope, rows []Row) (classifiedBatch, error) {
	ctx, span := e.tracer.Start(ctx, "clientimport.classify", trace.WithAttributes(
		attribute.String("mode", string(mode)),
		attribute.Int("rows", len(rows)),
	))
	defer span.End()

	if err := e.checkBatch(scope, rows); err != nil {
		return classifiedBatch{}, err
	}

	index, err := BuildIndex(ctx, e.source, scope)
	if err != nil {
		span.RecordError(err)
		return classifiedBatch{}, err
	}

	prepared := prepareRows(rows, scope, e.validator)
	items := classifyAll(prepared, index)
	summary := domain.Summarize(items)
	observeClassification(mode, summary)

	span.SetAttributes(
		attribute.Int("existing", index.Len()),
		attribute.Int("new", summary.NewCount),
		attribute.Int("duplicates", summary.DuplicateCount),
		attribute.Int("errors", summary.ErrorCount),
	)

	return classifiedBatch{
		prepared: prepared,
		items:    items,
		index:    index,
		summary:  summary,
	}, nil
}

// recordRun stores the audit row of a call. Failures are logged and never fail
// the call itself.
func (e *engine) recordRun(ctx context.Context, run domain.ImportRun) {
	if e.runs == nil {
		return
	}
	if err := e.runs.Record(ctx, run); err != nil {
		e.logger.Warn("failed to record import run",
			zap.String("run_id", run.ID),
			zap.String("mode", string(run.Mode)),
			zap.Error(err),
		)
	}
}

func (e *engine) newRun(mode domain.RunMode, scope domain.Scope, started time.Time) domain.ImportRun {
	return domain.ImportRun{
		ID:        e.newID(),
		Mode:      mode,
		UserID:    scope.UserID,
		Role:      scope.Role,
		StartedAt: started,
	}
}
