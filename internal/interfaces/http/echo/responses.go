package echo

import (
	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type newRowResponse struct {
	RowNumber int `json:"rowNumber"`
	Row       any `json:"row"`
}

type duplicateRowResponse struct {
	RowNumber        int    `json:"rowNumber"`
	Row              any    `json:"row"`
	ExistingClientID string `json:"existingClientId,omitempty"`
	Reason           string `json:"reason"`
	WithinFileOf     int    `json:"withinFileOf,omitempty"`
}

type errorRowResponse struct {
	RowNumber int    `json:"rowNumber"`
	Row       any    `json:"row"`
	Message   string `json:"message"`
}

type previewResponse struct {
	PreviewID  string                 `json:"previewId,omitempty"`
	Novos      []newRowResponse       `json:"novos"`
	Duplicados []duplicateRowResponse `json:"duplicados"`
	Erros      []errorRowResponse     `json:"erros"`
	Summary    domain.PreviewSummary  `json:"summary"`
}

type simulateResponse struct {
	Simulated bool                  `json:"simulated"`
	Summary   domain.PreviewSummary `json:"summary"`
}

type importResponse struct {
	RunID            string            `json:"runId"`
	PreviewChecked   bool              `json:"previewChecked"`
	TotalImportados  int               `json:"totalImportados"`
	TotalAtualizados int               `json:"totalAtualizados"`
	TotalIgnorados   int               `json:"totalIgnorados"`
	TotalErros       int               `json:"totalErros"`
	Errors           []domain.RowError `json:"errors"`
}

func toPreviewResponse(previewID string, items []domain.PreviewItem, summary domain.PreviewSummary) previewResponse {
	out := previewResponse{
		PreviewID:  previewID,
		Novos:      []newRowResponse{},
		Duplicados: []duplicateRowResponse{},
		Erros:      []errorRowResponse{},
		Summary:    summary,
	}

	for _, item := range items {
		switch it := item.(type) {
		case domain.NewItem:
			out.Novos = append(out.Novos, newRowResponse{RowNumber: it.Row, Row: it.Candidate.Payload()})
		case domain.DuplicateItem:
			out.Duplicados = append(out.Duplicados, duplicateRowResponse{
				RowNumber:        it.Row,
				Row:              it.Candidate.Payload(),
				ExistingClientID: it.ExistingID,
				Reason:           it.Reason,
				WithinFileOf:     it.WithinFileOf,
			})
		case domain.ErrorItem:
			out.Erros = append(out.Erros, errorRowResponse{RowNumber: it.Row, Row: it.Payload, Message: it.Message})
		}
	}
	return out
}

func toImportResponse(runID string, previewChecked bool, result domain.ImportResult) importResponse {
	errs := result.Errors
	if errs == nil {
		errs = []domain.RowError{}
	}
	return importResponse{
		RunID:            runID,
		PreviewChecked:   previewChecked,
		TotalImportados:  result.Created,
		TotalAtualizados: result.Updated,
		TotalIgnorados:   result.Skipped,
		TotalErros:       result.Failed,
		Errors:           errs,
	}
}
