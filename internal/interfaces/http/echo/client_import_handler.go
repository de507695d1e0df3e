package echo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	app "github.com/mohammadpnp/client-import/internal/application/clientimport"
	domain "github.com/mohammadpnp/client-import/internal/domain/client"
	"github.com/mohammadpnp/client-import/internal/infrastructure/file"
)

var (
	errBadBody     = errors.New("invalid request body")
	errInvalidMode = errors.New("mode must be preview or simulate")
	errMissingFile = errors.New("multipart field file is required")
	errInvalidFile = errors.New("invalid batch file")
)

type ClientImportHandler struct {
	preview  app.PreviewClients
	importer app.ImportClients
	maxRows  int
	logger   *zap.Logger
}

type batchRequest struct {
	Rows      []json.RawMessage `json:"rows"`
	Clients   []json.RawMessage `json:"clients"`
	PreviewID string            `json:"previewId"`
}

func (r batchRequest) raws() []json.RawMessage {
	if r.Rows != nil {
		return r.Rows
	}
	return r.Clients
}

func NewClientImportHandler(preview app.PreviewClients, importer app.ImportClients, maxRows int, logger *zap.Logger) *ClientImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientImportHandler{preview: preview, importer: importer, maxRows: maxRows, logger: logger}
}

func (h *ClientImportHandler) Preview(c echo.Context) error {
	scope, _, rows, err := h.bindBatch(c)
	if err != nil {
		return h.writeError(c, err)
	}
	return h.runPreview(c, scope, rows)
}

func (h *ClientImportHandler) Simulate(c echo.Context) error {
	scope, _, rows, err := h.bindBatch(c)
	if err != nil {
		return h.writeError(c, err)
	}
	return h.runSimulate(c, scope, rows)
}

func (h *ClientImportHandler) Import(c echo.Context) error {
	scope, req, rows, err := h.bindBatch(c)
	if err != nil {
		return h.writeError(c, err)
	}

	out, err := h.importer.Execute(c.Request().Context(), app.ImportInput{
		Scope:     scope,
		Rows:      rows,
		PreviewID: req.PreviewID,
	})
	if err != nil {
		if errors.Is(err, app.ErrImportAborted) {
			h.logger.Error("client import aborted", zap.String("run_id", out.RunID), zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, apiResponse{
				Data: toImportResponse(out.RunID, out.PreviewChecked, out.Result),
				Error: &errorBody{
					Code:    "import_aborted",
					Message: "client store became unavailable, the remaining rows were not processed",
				},
			})
		}
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusOK, apiResponse{Data: toImportResponse(out.RunID, out.PreviewChecked, out.Result)})
}

// Upload previews or simulates a spreadsheet or JSON batch file. Imports stay
// JSON-only since every row needs an explicit action.
func (h *ClientImportHandler) Upload(c echo.Context) error {
	scope, ok := scopeFrom(c)
	if !ok {
		return h.writeError(c, app.ErrInvalidScope)
	}

	mode := domain.RunMode(c.QueryParam("mode"))
	if mode == "" {
		mode = domain.RunModePreview
	}
	if mode != domain.RunModePreview && mode != domain.RunModeSimulate {
		return h.writeError(c, errInvalidMode)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return h.writeError(c, errMissingFile)
	}

	format, err := file.DetectFormat(header.Filename)
	if err != nil {
		return h.writeError(c, err)
	}

	src, err := header.Open()
	if err != nil {
		return h.writeError(c, fmt.Errorf("open upload: %w", err))
	}
	defer src.Close()

	raws, err := file.ReadRows(src, format, h.maxRows)
	if err != nil {
		if !errors.Is(err, file.ErrTooManyRows) {
			err = fmt.Errorf("%w: %w", errInvalidFile, err)
		}
		return h.writeError(c, err)
	}

	rows, err := app.DecodeRows(raws)
	if err != nil {
		return h.writeError(c, err)
	}

	if mode == domain.RunModeSimulate {
		return h.runSimulate(c, scope, rows)
	}
	return h.runPreview(c, scope, rows)
}

func (h *ClientImportHandler) runPreview(c echo.Context, scope domain.Scope, rows []app.Row) error {
	out, err := h.preview.Execute(c.Request().Context(), app.PreviewInput{Scope: scope, Rows: rows})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: toPreviewResponse(out.PreviewID, out.Items, out.Summary)})
}

func (h *ClientImportHandler) runSimulate(c echo.Context, scope domain.Scope, rows []app.Row) error {
	summary, err := h.preview.Simulate(c.Request().Context(), app.PreviewInput{Scope: scope, Rows: rows})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: simulateResponse{Simulated: true, Summary: summary}})
}

func (h *ClientImportHandler) bindBatch(c echo.Context) (domain.Scope, batchRequest, []app.Row, error) {
	var req batchRequest

	scope, ok := scopeFrom(c)
	if !ok {
		return domain.Scope{}, req, nil, app.ErrInvalidScope
	}
	if err := c.Bind(&req); err != nil {
		return domain.Scope{}, req, nil, errBadBody
	}

	rows, err := app.DecodeRows(req.raws())
	if err != nil {
		return domain.Scope{}, req, nil, err
	}
	return scope, req, rows, nil
}

func (h *ClientImportHandler) writeError(c echo.Context, err error) error {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		h.logger.Error("client import request failed",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return c.JSON(status, apiResponse{Error: &body})
}

func errorResponse(err error) (int, errorBody) {
	switch {
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, errorBody{Code: "bad_request", Message: "invalid request body"}
	case errors.Is(err, errInvalidMode):
		return http.StatusBadRequest, errorBody{Code: "invalid_mode", Message: err.Error()}
	case errors.Is(err, errMissingFile):
		return http.StatusBadRequest, errorBody{Code: "bad_request", Message: err.Error()}
	case errors.Is(err, file.ErrUnsupportedFormat):
		return http.StatusBadRequest, errorBody{Code: "unsupported_format", Message: "file must be .xlsx, .csv or .json"}
	case errors.Is(err, errInvalidFile):
		return http.StatusBadRequest, errorBody{Code: "invalid_file", Message: err.Error()}
	case errors.Is(err, app.ErrEmptyBatch):
		return http.StatusBadRequest, errorBody{Code: "empty_batch", Message: "batch has no rows"}
	case errors.Is(err, app.ErrDuplicateRowNumber):
		return http.StatusBadRequest, errorBody{Code: "duplicate_row_number", Message: err.Error()}
	case errors.Is(err, app.ErrBatchTooLarge), errors.Is(err, file.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge, errorBody{Code: "batch_too_large", Message: err.Error()}
	case errors.Is(err, app.ErrInvalidScope):
		return http.StatusUnauthorized, errorBody{Code: "unauthenticated", Message: "caller identity is missing"}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorBody{Code: "store_unavailable", Message: "client store is unavailable"}
	default:
		return http.StatusInternalServerError, errorBody{Code: "internal_error", Message: "failed to process client batch"}
	}
}
