package clientimport

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

type PreviewInput struct {
	Scope domain.Scope
	Rows  []Row
}

type PreviewOutput struct {
	PreviewID string
	Items     []domain.PreviewItem
	Summary   domain.PreviewSummary
}

// PreviewClients classifies a batch without writing clients. Execute returns the
// per-row items; Simulate returns only the counts.
type PreviewClients interface {
	Execute(ctx context.Context, in PreviewInput) (PreviewOutput, error)
	Simulate(ctx context.Context, in PreviewInput) (domain.PreviewSummary, error)
}

type previewClients struct {
	*engine
	snapshots PreviewStore
}

func NewPreviewClients(
	source domain.ExistingRecordSource,
	snapshots PreviewStore,
	runs domain.ImportRunRepository,
	logger *zap.Logger,
	cfg Config,
) PreviewClients {
	return &previewClients{
		engine:    newEngine(source, runs, logger, cfg),
		snapshots: snapshots,
	}
}

func (uc *previewClients) Execute(ctx context.Context, in PreviewInput) (PreviewOutput, error) {
	started := uc.now()
	batch, err := uc.classifyBatch(ctx, domain.RunModePreview, in.Scope, in.Rows)
	if err != nil {
		batchesTotal.WithLabelValues(string(domain.RunModePreview), "error").Inc()
		return PreviewOutput{}, err
	}

	run := uc.newRun(domain.RunModePreview, in.Scope, started)
	out := PreviewOutput{
		Items:   batch.items,
		Summary: batch.summary,
	}

	if uc.snapshots != nil {
		snapshot := PreviewSnapshot{
			ID:        run.ID,
			UserID:    in.Scope.UserID,
			Digest:    batchDigest(batch.prepared),
			Rows:      snapshotRows(batch.items),
			Summary:   batch.summary,
			CreatedAt: started,
		}
		if err := uc.snapshots.Save(ctx, snapshot); err != nil {
			uc.logger.Warn("failed to store preview snapshot", zap.String("preview_id", run.ID), zap.Error(err))
		} else {
			out.PreviewID = run.ID
		}
	}

	uc.finish(ctx, run, batch.summary)
	return out, nil
}

func (uc *previewClients) Simulate(ctx context.Context, in PreviewInput) (domain.PreviewSummary, error) {
	started := uc.now()
	batch, err := uc.classifyBatch(ctx, domain.RunModeSimulate, in.Scope, in.Rows)
	if err != nil {
		batchesTotal.WithLabelValues(string(domain.RunModeSimulate), "error").Inc()
		return domain.PreviewSummary{}, err
	}

	uc.finish(ctx, uc.newRun(domain.RunModeSimulate, in.Scope, started), batch.summary)
	return batch.summary, nil
}

func (uc *previewClients) finish(ctx context.Context, run domain.ImportRun, summary domain.PreviewSummary) {
	run.TotalRows = summary.Total
	run.NewCount = summary.NewCount
	run.DuplicateCount = summary.DuplicateCount
	run.ErrorCount = summary.ErrorCount
	run.FinishedAt = uc.now()
	uc.recordRun(ctx, run)

	batchesTotal.WithLabelValues(string(run.Mode), "ok").Inc()
	batchDuration.WithLabelValues(string(run.Mode)).Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	uc.logger.Info("client batch classified",
		zap.String("run_id", run.ID),
		zap.String("mode", string(run.Mode)),
		zap.String("user_id", run.UserID),
		zap.Int("total", summary.Total),
		zap.Int("new", summary.NewCount),
		zap.Int("duplicates", summary.DuplicateCount),
		zap.Int("errors", summary.ErrorCount),
	)
}

// LoadSnapshot returns the stored preview for id when it belongs to userID.
func LoadSnapshot(ctx context.Context, store PreviewStore, id, userID string) (PreviewSnapshot, error) {
	if store == nil || id == "" {
		return PreviewSnapshot{}, ErrPreviewNotAvailable
	}
	snapshot, err := store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPreviewNotAvailable) {
			return PreviewSnapshot{}, err
		}
		return PreviewSnapshot{}, errors.Join(ErrPreviewNotAvailable, err)
	}
	if snapshot.UserID != userID {
		return PreviewSnapshot{}, ErrPreviewNotAvailable
	}
	return snapshot, nil
}
