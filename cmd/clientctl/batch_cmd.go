package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	app "github.com/mohammadpnp/client-import/internal/application/clientimport"
	domain "github.com/mohammadpnp/client-import/internal/domain/client"
	"github.com/mohammadpnp/client-import/internal/infrastructure/file"
)

type batchFlags struct {
	file   string
	userID string
	role   string
	team   []string
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "Batch file (.json, .csv or .xlsx), relative to IMPORT_BASE_DIR (required)")
	cmd.Flags().StringVar(&f.userID, "user", "", "Caller user id (required)")
	cmd.Flags().StringVar(&f.role, "role", string(domain.RoleSeller), "Caller role: seller, manager or admin")
	cmd.Flags().StringSliceVar(&f.team, "team", nil, "Team user ids visible to a manager")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("user")
}

func (f *batchFlags) scope() (domain.Scope, error) {
	role, err := domain.ParseRole(f.role)
	if err != nil {
		return domain.Scope{}, fmt.Errorf("invalid --role: %w", err)
	}
	return domain.Scope{Role: role, UserID: strings.TrimSpace(f.userID), TeamUserIDs: f.team}, nil
}

type commandOutput struct {
	Command    string `json:"command"`
	File       string `json:"file"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

type importResult struct {
	RunID          string            `json:"runId"`
	PreviewChecked bool              `json:"previewChecked"`
	Created        int               `json:"created"`
	Updated        int               `json:"updated"`
	Skipped        int               `json:"skipped"`
	Failed         int               `json:"failed"`
	Errors         []domain.RowError `json:"errors,omitempty"`
}

type previewRow struct {
	RowNumber    int    `json:"rowNumber"`
	Kind         string `json:"kind"`
	ExistingID   string `json:"existingClientId,omitempty"`
	Reason       string `json:"reason,omitempty"`
	WithinFileOf int    `json:"withinFileOf,omitempty"`
	Message      string `json:"message,omitempty"`
}

type previewResult struct {
	PreviewID string                `json:"previewId,omitempty"`
	Summary   domain.PreviewSummary `json:"summary"`
	Rows      []previewRow          `json:"rows"`
}

func newPreviewCmd(env *environment) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Classify every row of a batch file as new, duplicate or error",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, rows, err := env.readBatch(cmd, &flags)
			if err != nil {
				return err
			}
			useCases, cleanup, err := env.useCases(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now()
			out, err := useCases.Preview.Execute(cmd.Context(), app.PreviewInput{Scope: scope, Rows: rows})
			if err != nil {
				return err
			}
			return env.write(commandOutput{
				Command:    "preview",
				File:       flags.file,
				DurationMS: time.Since(start).Milliseconds(),
				Result:     toPreviewResult(out),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newSimulateCmd(env *environment) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print only the preview counts of a batch file",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, rows, err := env.readBatch(cmd, &flags)
			if err != nil {
				return err
			}
			useCases, cleanup, err := env.useCases(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now()
			summary, err := useCases.Preview.Simulate(cmd.Context(), app.PreviewInput{Scope: scope, Rows: rows})
			if err != nil {
				return err
			}
			return env.write(commandOutput{
				Command:    "simulate",
				File:       flags.file,
				DurationMS: time.Since(start).Milliseconds(),
				Result:     summary,
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newImportCmd(env *environment) *cobra.Command {
	var (
		flags     batchFlags
		previewID string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a batch file, applying each row's action",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, rows, err := env.readBatch(cmd, &flags)
			if err != nil {
				return err
			}
			useCases, cleanup, err := env.useCases(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now()
			out, err := useCases.Import.Execute(cmd.Context(), app.ImportInput{Scope: scope, Rows: rows, PreviewID: previewID})
			if err != nil && !errors.Is(err, app.ErrImportAborted) {
				return err
			}
			if writeErr := env.write(commandOutput{
				Command:    "import",
				File:       flags.file,
				DurationMS: time.Since(start).Milliseconds(),
				Result:     toImportResult(out),
			}); writeErr != nil {
				return writeErr
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&previewID, "preview-id", "", "Preview id to check the classification against")
	return cmd
}

func (env *environment) readBatch(cmd *cobra.Command, flags *batchFlags) (domain.Scope, []app.Row, error) {
	scope, err := flags.scope()
	if err != nil {
		return domain.Scope{}, nil, err
	}

	format, err := file.DetectFormat(flags.file)
	if err != nil {
		return domain.Scope{}, nil, err
	}

	src, err := env.source.Open(cmd.Context(), flags.file)
	if err != nil {
		return domain.Scope{}, nil, err
	}
	defer src.Close()

	raws, err := file.ReadRows(src, format, env.maxRows)
	if err != nil {
		return domain.Scope{}, nil, err
	}
	rows, err := app.DecodeRows(raws)
	if err != nil {
		return domain.Scope{}, nil, err
	}
	return scope, rows, nil
}

func toPreviewResult(out app.PreviewOutput) previewResult {
	result := previewResult{
		PreviewID: out.PreviewID,
		Summary:   out.Summary,
		Rows:      make([]previewRow, 0, len(out.Items)),
	}
	for _, item := range out.Items {
		row := previewRow{RowNumber: item.RowNumber()}
		switch it := item.(type) {
		case domain.NewItem:
			row.Kind = app.KindNew
		case domain.DuplicateItem:
			row.Kind = app.KindDuplicate
			row.ExistingID = it.ExistingID
			row.Reason = it.Reason
			row.WithinFileOf = it.WithinFileOf
		case domain.ErrorItem:
			row.Kind = app.KindError
			row.Message = it.Message
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

func toImportResult(out app.ImportOutput) importResult {
	return importResult{
		RunID:          out.RunID,
		PreviewChecked: out.PreviewChecked,
		Created:        out.Result.Created,
		Updated:        out.Result.Updated,
		Skipped:        out.Result.Skipped,
		Failed:         out.Result.Failed,
		Errors:         out.Result.Errors,
	}
}
