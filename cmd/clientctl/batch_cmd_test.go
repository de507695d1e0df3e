package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/mohammadpnp/client-import/internal/application/clientimport"
	"github.com/mohammadpnp/client-import/internal/bootstrap"
	domain "github.com/mohammadpnp/client-import/internal/domain/client"
	"github.com/mohammadpnp/client-import/internal/infrastructure/file"
)

type stubPreview struct {
	last app.PreviewInput
}

func (s *stubPreview) Execute(_ context.Context, in app.PreviewInput) (app.PreviewOutput, error) {
	s.last = in
	return app.PreviewOutput{
		Items: []domain.PreviewItem{
			domain.NewItem{Row: in.Rows[0].Number},
			domain.DuplicateItem{Row: in.Rows[1].Number, ExistingID: "c1", Reason: domain.ReasonExistingByDocument},
		},
		Summary: domain.PreviewSummary{Total: 2, NewCount: 1, DuplicateCount: 1},
	}, nil
}

func (s *stubPreview) Simulate(_ context.Context, in app.PreviewInput) (domain.PreviewSummary, error) {
	s.last = in
	return domain.PreviewSummary{Total: len(in.Rows), NewCount: len(in.Rows)}, nil
}

type stubImport struct {
	last app.ImportInput
}

func (s *stubImport) Execute(_ context.Context, in app.ImportInput) (app.ImportOutput, error) {
	s.last = in
	return app.ImportOutput{RunID: "run-1", Result: domain.ImportResult{Created: len(in.Rows)}}, nil
}

func testEnvironment(t *testing.T, preview *stubPreview, importer *stubImport) (*environment, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	batch := `[{"name":"Acme","document":"1"},{"name":"Beta","document":"2","action":"skip"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batch.json"), []byte(batch), 0o600))

	var out bytes.Buffer
	env := &environment{
		stdout:  &out,
		source:  file.NewLocalSource(dir),
		maxRows: 10,
		useCases: func(context.Context) (bootstrap.UseCases, func(), error) {
			return bootstrap.UseCases{Preview: preview, Import: importer}, func() {}, nil
		},
	}
	return env, &out
}

func TestPreviewCommand(t *testing.T) {
	t.Parallel()

	preview := &stubPreview{}
	env, out := testEnvironment(t, preview, &stubImport{})

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{"preview", "--file", "batch.json", "--user", "u1", "--role", "manager", "--team", "u2,u3"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, domain.RoleManager, preview.last.Scope.Role)
	assert.Equal(t, []string{"u2", "u3"}, preview.last.Scope.TeamUserIDs)

	var got struct {
		Command string        `json:"command"`
		Result  previewResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "preview", got.Command)
	require.Len(t, got.Result.Rows, 2)
	assert.Equal(t, app.KindDuplicate, got.Result.Rows[1].Kind)
	assert.Equal(t, "c1", got.Result.Rows[1].ExistingID)
}

func TestImportCommandForwardsPreviewID(t *testing.T) {
	t.Parallel()

	importer := &stubImport{}
	env, out := testEnvironment(t, &stubPreview{}, importer)

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{"import", "--file", "batch.json", "--user", "u1", "--preview-id", "p-9"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "p-9", importer.last.PreviewID)
	assert.Equal(t, domain.ActionSkip, importer.last.Rows[1].Candidate.Action)
	assert.Contains(t, out.String(), `"created": 2`)
}

func TestCommandRejectsBadInput(t *testing.T) {
	t.Parallel()

	env, _ := testEnvironment(t, &stubPreview{}, &stubImport{})

	cmd := newRootCmd(env)
	cmd.SetArgs([]string{"simulate", "--file", "batch.json", "--user", "u1", "--role", "owner"})
	cmd.SetErr(&bytes.Buffer{})
	assert.ErrorContains(t, cmd.Execute(), "invalid --role")

	cmd = newRootCmd(env)
	cmd.SetArgs([]string{"simulate", "--file", "../outside.json", "--user", "u1"})
	cmd.SetErr(&bytes.Buffer{})
	assert.ErrorContains(t, cmd.Execute(), "escapes")
}
