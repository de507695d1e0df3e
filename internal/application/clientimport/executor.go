package clientimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

type ImportInput struct {
	Scope     domain.Scope
	Rows      []Row
	PreviewID string
}

type ImportOutput struct {
	RunID string
	// PreviewChecked is true when the rows were compared against a stored preview.
	PreviewChecked bool
	Result         domain.ImportResult
}

// ImportClients commits a batch row by row. A failing row never stops the batch;
// only an unreachable store does, in which case the partial result is returned
// together with an error wrapping ErrImportAborted.
type ImportClients interface {
	Execute(ctx context.Context, in ImportInput) (ImportOutput, error)
}

type importClients struct {
	*engine
	repo      domain.ClientRepository
	snapshots PreviewStore
	events    EventPublisher
}

func NewImportClients(
	source domain.ExistingRecordSource,
	repo domain.ClientRepository,
	snapshots PreviewStore,
	runs domain.ImportRunRepository,
	events EventPublisher,
	logger *zap.Logger,
	cfg Config,
) ImportClients {
	return &importClients{
		engine:    newEngine(source, runs, logger, cfg),
		repo:      repo,
		snapshots: snapshots,
		events:    events,
	}
}

func (uc *importClients) Execute(ctx context.Context, in ImportInput) (ImportOutput, error) {
	started := uc.now()
	ctx, span := uc.tracer.Start(ctx, "clientimport.import", trace.WithAttributes(
		attribute.Int("rows", len(in.Rows)),
		attribute.Bool("preview", in.PreviewID != ""),
	))
	defer span.End()

	batch, err := uc.classifyBatch(ctx, domain.RunModeImport, in.Scope, in.Rows)
	if err != nil {
		batchesTotal.WithLabelValues(string(domain.RunModeImport), "error").Inc()
		span.RecordError(err)
		return ImportOutput{}, err
	}

	run := uc.newRun(domain.RunModeImport, in.Scope, started)
	baseline := uc.previewBaseline(ctx, in, batch)

	var result domain.ImportResult
	var abortErr error
	for i, item := range batch.items {
		if err := ctx.Err(); err != nil {
			abortErr = err
			break
		}

		p := batch.prepared[i]
		if baseline != nil && drifted(baseline, item) {
			result.RecordFailed(item.RowNumber(), p.row.Candidate.Fields.Name, msgPreviewDrift)
			continue
		}

		if err := uc.commit(ctx, in.Scope, p, item, batch.index, &result); err != nil {
			abortErr = err
			break
		}
	}

	run.TotalRows = batch.summary.Total
	run.NewCount = batch.summary.NewCount
	run.DuplicateCount = batch.summary.DuplicateCount
	run.ErrorCount = batch.summary.ErrorCount
	run.CreatedCount = result.Created
	run.UpdatedCount = result.Updated
	run.SkippedCount = result.Skipped
	run.FailedCount = result.Failed
	run.FinishedAt = uc.now()

	uc.recordRun(ctx, run)
	uc.publish(ctx, run, result, abortErr != nil)
	observeResult(result)
	batchDuration.WithLabelValues(string(domain.RunModeImport)).Observe(run.FinishedAt.Sub(started).Seconds())

	out := ImportOutput{
		RunID:          run.ID,
		PreviewChecked: baseline != nil,
		Result:         result,
	}

	if abortErr != nil {
		batchesTotal.WithLabelValues(string(domain.RunModeImport), "aborted").Inc()
		span.RecordError(abortErr)
		uc.logger.Error("client import aborted",
			zap.String("run_id", run.ID),
			zap.Int("processed", result.Total()),
			zap.Int("total", batch.summary.Total),
			zap.Error(abortErr),
		)
		return out, fmt.Errorf("%w after %d of %d rows: %w", ErrImportAborted, result.Total(), batch.summary.Total, abortErr)
	}

	batchesTotal.WithLabelValues(string(domain.RunModeImport), "ok").Inc()
	uc.logger.Info("client import finished",
		zap.String("run_id", run.ID),
		zap.String("user_id", run.UserID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return out, nil
}

// commit applies the row's action to its classification. It returns an error only
// when the store is unreachable.
func (uc *importClients) commit(ctx context.Context, scope domain.Scope, p preparedRow, item domain.PreviewItem, index *Index, result *domain.ImportResult) error {
	name := p.row.Candidate.Fields.Name
	action := p.row.Candidate.Action

	switch it := item.(type) {
	case domain.ErrorItem:
		result.RecordFailed(it.Row, name, it.Message)
		return nil

	case domain.DuplicateItem:
		switch action {
		case domain.ActionSkip:
			result.RecordSkipped()
			return nil
		case domain.ActionImportAnyway:
			return uc.create(ctx, p, index, result)
		case domain.ActionUpdate:
			return uc.update(ctx, scope, p, it, index, result)
		default:
			result.RecordFailed(it.Row, name, msgDuplicateNoAction)
			return nil
		}

	case domain.NewItem:
		switch action {
		case domain.ActionSkip:
			result.RecordSkipped()
			return nil
		case domain.ActionUpdate:
			result.RecordFailed(it.Row, name, msgUpdateNotLinked)
			return nil
		default:
			return uc.create(ctx, p, index, result)
		}
	}

	return nil
}

func (uc *importClients) create(ctx context.Context, p preparedRow, index *Index, result *domain.ImportResult) error {
	candidate := p.row.Candidate
	c := domain.NewClient(uc.newID(), p.owner, candidate.Fields, candidate.Attributes)

	err := uc.repo.Create(ctx, c)
	switch {
	case err == nil:
		index.Add(c.ID, c.Identity())
		result.RecordCreated(c.ID)
		return nil
	case errors.Is(err, domain.ErrStoreUnavailable):
		return err
	case errors.Is(err, domain.ErrUniqueViolation):
		conflict := &domain.DuplicateConflictError{Cause: err}
		result.RecordFailed(p.row.Number, candidate.Fields.Name, conflict.Error())
		return nil
	default:
		uc.logger.Error("create client failed", zap.Int("row", p.row.Number), zap.Error(err))
		result.RecordFailed(p.row.Number, candidate.Fields.Name, msgCreateFailed)
		return nil
	}
}

func (uc *importClients) update(ctx context.Context, scope domain.Scope, p preparedRow, dup domain.DuplicateItem, index *Index, result *domain.ImportResult) error {
	candidate := p.row.Candidate
	name := candidate.Fields.Name

	if dup.WithinFile() {
		result.RecordFailed(p.row.Number, name, (&domain.MissingLinkError{RowNumber: p.row.Number}).Error())
		return nil
	}

	target := strings.TrimSpace(candidate.ExistingClientID)
	if target == "" {
		target = dup.ExistingID
	}

	existing, err := uc.repo.FindByID(ctx, scope, target)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStoreUnavailable):
		return err
	case errors.Is(err, domain.ErrClientNotFound):
		result.RecordFailed(p.row.Number, name, fmt.Sprintf("cannot update: existing client %s not found", target))
		return nil
	default:
		uc.logger.Error("load client for update failed", zap.Int("row", p.row.Number), zap.String("client_id", target), zap.Error(err))
		result.RecordFailed(p.row.Number, name, msgUpdateFailed)
		return nil
	}

	before := indexedIdentity(existing)
	merged := *existing
	merged.Attributes = existing.Attributes.Clone()
	merged.Merge(candidate.Fields, candidate.Attributes)

	if conflictID, reason, ok := index.Match(merged.Identity(), target); ok {
		conflict := &domain.DuplicateConflictError{ExistingID: conflictID, Reason: reason}
		result.RecordFailed(p.row.Number, name, conflict.Error())
		return nil
	}

	err = uc.repo.Update(ctx, merged)
	switch {
	case err == nil:
		index.Move(target, before, merged.Identity())
		result.RecordUpdated(target)
		return nil
	case errors.Is(err, domain.ErrStoreUnavailable):
		return err
	case errors.Is(err, domain.ErrUniqueViolation):
		conflict := &domain.DuplicateConflictError{Cause: err}
		result.RecordFailed(p.row.Number, name, conflict.Error())
		return nil
	default:
		uc.logger.Error("update client failed", zap.Int("row", p.row.Number), zap.String("client_id", target), zap.Error(err))
		result.RecordFailed(p.row.Number, name, msgUpdateFailed)
		return nil
	}
}

// indexedIdentity computes the identity the index was built with for a stored
// client, falling back to the raw columns when a cached value is empty.
func indexedIdentity(c *domain.Client) domain.NormalizedIdentity {
	return domain.ExistingRecord{
		ID:                 c.ID,
		OwnerID:            c.OwnerID,
		Name:               c.Name,
		City:               c.City,
		State:              c.State,
		Document:           c.Document,
		NameNormalized:     &c.NameNormalized,
		CityNormalized:     &c.CityNormalized,
		DocumentNormalized: &c.DocumentNormalized,
	}.Identity()
}

// previewBaseline returns the stored classification keyed by row number when the
// caller referenced a preview of this very batch, nil otherwise.
func (uc *importClients) previewBaseline(ctx context.Context, in ImportInput, batch classifiedBatch) map[int]SnapshotRow {
	if in.PreviewID == "" {
		return nil
	}

	snapshot, err := LoadSnapshot(ctx, uc.snapshots, in.PreviewID, in.Scope.UserID)
	if err != nil {
		uc.logger.Warn("preview snapshot unavailable, using fresh classification",
			zap.String("preview_id", in.PreviewID),
			zap.Error(err),
		)
		return nil
	}
	if snapshot.Digest != batchDigest(batch.prepared) {
		uc.logger.Warn("batch differs from its preview, using fresh classification",
			zap.String("preview_id", in.PreviewID),
		)
		return nil
	}

	rows := make(map[int]SnapshotRow, len(snapshot.Rows))
	for _, r := range snapshot.Rows {
		rows[r.RowNumber] = r
	}
	return rows
}

// drifted reports whether a row's classification no longer matches what the
// caller saw in the preview. Invalid rows fail on their own and are not compared.
func drifted(baseline map[int]SnapshotRow, item domain.PreviewItem) bool {
	if _, invalid := item.(domain.ErrorItem); invalid {
		return false
	}
	previous, ok := baseline[item.RowNumber()]
	if !ok {
		return true
	}
	current := snapshotRow(item)
	return previous.Kind != current.Kind || previous.ExistingID != current.ExistingID
}

func (uc *importClients) publish(ctx context.Context, run domain.ImportRun, result domain.ImportResult, aborted bool) {
	if uc.events == nil {
		return
	}
	event := ImportCompletedEvent{
		RunID:      run.ID,
		UserID:     run.UserID,
		Role:       string(run.Role),
		Created:    result.Created,
		Updated:    result.Updated,
		Skipped:    result.Skipped,
		Failed:     result.Failed,
		CreatedIDs: result.CreatedIDs,
		UpdatedIDs: result.UpdatedIDs,
		Aborted:    aborted,
		OccurredAt: run.FinishedAt,
	}
	if err := uc.events.PublishImportCompleted(ctx, event); err != nil {
		uc.logger.Warn("failed to publish import event", zap.String("run_id", run.ID), zap.Error(err))
	}
}
