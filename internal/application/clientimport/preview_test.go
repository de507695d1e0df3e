package clientimport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/mohammadpnp/client-import/internal/application/clientimport"
	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

func TestPreviewFlagsLaterRowOfSameIdentity(t *testing.T) {
	t.Parallel()

	uc := app.NewPreviewClients(&fakeSource{}, nil, nil, nil, app.Config{})
	rows := decodeRows(t, `[
		{"name":"Acme Ltda","city":"Campinas","state":"sp","document":"12.345.678/0001-99"},
		{"name":"ACME LTDA","city":"CAMPINAS","state":"SP","document":""}
	]`)

	out, err := uc.Execute(context.Background(), app.PreviewInput{Scope: sellerScope, Rows: rows})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)

	assert.IsType(t, domain.NewItem{}, out.Items[0])
	dup, ok := out.Items[1].(domain.DuplicateItem)
	require.True(t, ok)
	assert.Equal(t, 2, dup.Row)
	assert.Equal(t, domain.ReasonWithinFile, dup.Reason)
	assert.Empty(t, dup.ExistingID)
	assert.Equal(t, 1, dup.WithinFileOf)
	assert.Equal(t, domain.PreviewSummary{Total: 2, NewCount: 1, DuplicateCount: 1}, out.Summary)
}

func TestPreviewMatchesExistingByDocumentIgnoringFormat(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []domain.ExistingRecord{
		existing("c1", "u1", "", "", "", "11222333000144"),
	}}
	uc := app.NewPreviewClients(source, nil, nil, nil, app.Config{})

	out, err := uc.Execute(context.Background(), app.PreviewInput{
		Scope: sellerScope,
		Rows:  decodeRows(t, `[{"document":"11.222.333/0001-44"}]`),
	})
	require.NoError(t, err)

	dup, ok := out.Items[0].(domain.DuplicateItem)
	require.True(t, ok)
	assert.Equal(t, "c1", dup.ExistingID)
	assert.Equal(t, domain.ReasonExistingByDocument, dup.Reason)
}

func TestPreviewDocumentMatchWinsOverComposite(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []domain.ExistingRecord{
		existing("c-composite", "u1", "Acme", "Campinas", "SP", ""),
		existing("c-document", "u1", "Other", "Recife", "PE", "99887766000155"),
	}}
	uc := app.NewPreviewClients(source, nil, nil, nil, app.Config{})

	out, err := uc.Execute(context.Background(), app.PreviewInput{
		Scope: sellerScope,
		Rows:  decodeRows(t, `[{"name":"acme","city":"campinas","state":"sp","document":"99.887.766/0001-55"}]`),
	})
	require.NoError(t, err)

	dup := out.Items[0].(domain.DuplicateItem)
	assert.Equal(t, "c-document", dup.ExistingID)
	assert.Equal(t, domain.ReasonExistingByDocument, dup.Reason)
}

func TestPreviewCompositeMatchUsesOldestRecord(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []domain.ExistingRecord{
		existing("c-old", "u1", "Padaria Sol", "Niterói", "RJ", ""),
		existing("c-new", "u1", "PADARIA SOL", "Niteroi", "rj", ""),
	}}
	uc := app.NewPreviewClients(source, nil, nil, nil, app.Config{})

	out, err := uc.Execute(context.Background(), app.PreviewInput{
		Scope: sellerScope,
		Rows:  decodeRows(t, `[{"name":"padaria sol","city":"niteroi","state":"RJ"}]`),
	})
	require.NoError(t, err)

	dup := out.Items[0].(domain.DuplicateItem)
	assert.Equal(t, "c-old", dup.ExistingID)
	assert.Equal(t, domain.ReasonExistingByComposite, dup.Reason)
}

func TestPreviewRespectsScope(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []domain.ExistingRecord{
		existing("c1", "someone-else", "Acme", "Campinas", "SP", ""),
	}}
	uc := app.NewPreviewClients(source, nil, nil, nil, app.Config{})
	rows := decodeRows(t, `[{"name":"Acme","city":"Campinas","state":"SP"}]`)

	out, err := uc.Execute(context.Background(), app.PreviewInput{Scope: sellerScope, Rows: rows})
	require.NoError(t, err)
	assert.IsType(t, domain.NewItem{}, out.Items[0])

	admin := domain.Scope{Role: domain.RoleAdmin, UserID: "a1"}
	out, err = uc.Execute(context.Background(), app.PreviewInput{Scope: admin, Rows: rows})
	require.NoError(t, err)
	assert.IsType(t, domain.DuplicateItem{}, out.Items[0])
}

func TestPreviewReportsShapeErrorsPerRow(t *testing.T) {
	t.Parallel()

	uc := app.NewPreviewClients(&fakeSource{}, nil, nil, nil, app.Config{})
	rows := decodeRows(t, `[
		{"name": 10},
		{"rowNumber": 8, "name":"Acme","action":"merge"},
		{"name":"Beta","ownerId":"u2"},
		{"name":"Gamma"}
	]`)

	out, err := uc.Execute(context.Background(), app.PreviewInput{Scope: sellerScope, Rows: rows})
	require.NoError(t, err)
	require.Len(t, out.Items, 4)

	first := out.Items[0].(domain.ErrorItem)
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "name: must be a string", first.Message)
	assert.NotNil(t, first.Payload)

	second := out.Items[1].(domain.ErrorItem)
	assert.Equal(t, 8, second.Row)
	assert.Equal(t, "action: must be one of [update skip import_anyway]", second.Message)

	third := out.Items[2].(domain.ErrorItem)
	assert.Contains(t, third.Message, "ownerId")

	assert.IsType(t, domain.NewItem{}, out.Items[3])
	assert.Equal(t, 3, out.Summary.ErrorCount)
}

func TestPreviewInvalidRowsDoNotCountAsBatchCollisions(t *testing.T) {
	t.Parallel()

	uc := app.NewPreviewClients(&fakeSource{}, nil, nil, nil, app.Config{})
	rows := decodeRows(t, `[
		{"name":"Acme","city":"Campinas","state":"SP","action":"bogus"},
		{"name":"Acme","city":"Campinas","state":"SP"}
	]`)

	out, err := uc.Execute(context.Background(), app.PreviewInput{Scope: sellerScope, Rows: rows})
	require.NoError(t, err)
	assert.IsType(t, domain.ErrorItem{}, out.Items[0])
	assert.IsType(t, domain.NewItem{}, out.Items[1])
}

func TestPreviewIsRepeatable(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []domain.ExistingRecord{
		existing("c1", "u1", "Acme", "Campinas", "SP", "123"),
	}}
	uc := app.NewPreviewClients(source, nil, nil, nil, app.Config{})
	rows := decodeRows(t, `[
		{"name":"Acme","city":"Campinas","state":"SP"},
		{"name":"Beta","document":"123"},
		{"name":"Beta","document":"123"},
		{"name":"Gamma"}
	]`)

	first, err := uc.Execute(context.Background(), app.PreviewInput{Scope: sellerScope, Rows: rows})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), app.PreviewInput{Scope: sellerScope, Rows: rows})
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, 2, source.calls)
}

func TestPreviewStoresSnapshotAndAuditRun(t *testing.T) {
	t.Parallel()

	snapshots := newFakeSnapshots()
	runs := &fakeRuns{err: errors.New("audit down")}
	uc := app.NewPreviewClients(&fakeSource{}, snapshots, runs, nil, app.Config{})

	out, err := uc.Execute(context.Background(), app.PreviewInput{
		Scope: sellerScope,
		Rows:  decodeRows(t, `[{"name":"Acme"}]`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.PreviewID)

	stored, ok := snapshots.items[out.PreviewID]
	require.True(t, ok)
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, []app.SnapshotRow{{RowNumber: 1, Kind: app.KindNew}}, stored.Rows)

	require.Len(t, runs.runs, 1)
	assert.Equal(t, domain.RunModePreview, runs.runs[0].Mode)
	assert.Equal(t, 1, runs.runs[0].NewCount)
}

func TestSimulateReturnsOnlySummary(t *testing.T) {
	t.Parallel()

	snapshots := newFakeSnapshots()
	uc := app.NewPreviewClients(&fakeSource{}, snapshots, nil, nil, app.Config{})

	summary, err := uc.Simulate(context.Background(), app.PreviewInput{
		Scope: sellerScope,
		Rows:  decodeRows(t, `[{"name":"A"},{"name":"A"},{"name":5}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PreviewSummary{Total: 3, NewCount: 1, DuplicateCount: 1, ErrorCount: 1}, summary)
	assert.Empty(t, snapshots.items)
}

func TestPreviewRejectsBadBatches(t *testing.T) {
	t.Parallel()

	uc := app.NewPreviewClients(&fakeSource{}, nil, nil, nil, app.Config{MaxRows: 2})
	ctx := context.Background()

	_, err := uc.Execute(ctx, app.PreviewInput{Scope: sellerScope})
	assert.ErrorIs(t, err, app.ErrEmptyBatch)

	_, err = uc.Execute(ctx, app.PreviewInput{Scope: sellerScope, Rows: decodeRows(t, `[{},{},{}]`)})
	assert.ErrorIs(t, err, app.ErrBatchTooLarge)

	_, err = uc.Execute(ctx, app.PreviewInput{Scope: domain.Scope{Role: domain.RoleSeller}, Rows: decodeRows(t, `[{}]`)})
	assert.ErrorIs(t, err, app.ErrInvalidScope)
}

func TestPreviewPropagatesStoreUnavailable(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: domain.ErrStoreUnavailable}
	uc := app.NewPreviewClients(source, nil, nil, nil, app.Config{})

	_, err := uc.Execute(context.Background(), app.PreviewInput{Scope: sellerScope, Rows: decodeRows(t, `[{}]`)})
	assert.ErrorIs(t, err, app.ErrBuildIndex)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
