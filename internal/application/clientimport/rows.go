package clientimport

import (
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

// DefaultRowOffset turns a 0-based slice index into a 1-based row number.
const DefaultRowOffset = 1

// Row is one entry of an incoming batch. DecodeErr is set when the raw payload
// could not be turned into a CandidateRow; Raw then keeps what the caller sent.
type Row struct {
	Number    int
	Candidate domain.CandidateRow
	Raw       json.RawMessage
	DecodeErr error
}

func (r Row) payload() any {
	if r.DecodeErr != nil {
		if len(r.Raw) == 0 {
			return nil
		}
		return r.Raw
	}
	return r.Candidate.Payload()
}

// DecodeRows decodes each raw row independently so one malformed row only fails
// itself, then assigns row numbers.
func DecodeRows(raws []json.RawMessage) ([]Row, error) {
	rows := make([]Row, 0, len(raws))
	for _, raw := range raws {
		row := Row{Raw: raw}
		if err := json.Unmarshal(raw, &row.Candidate); err != nil {
			row.DecodeErr = asShapeError(err)
			row.Candidate = domain.CandidateRow{RowNumber: peekRowNumber(raw)}
		}
		rows = append(rows, row)
	}
	return NumberRows(rows)
}

// FromCandidates wraps already-typed candidates, e.g. from a spreadsheet reader.
func FromCandidates(candidates []domain.CandidateRow) ([]Row, error) {
	rows := make([]Row, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, Row{Candidate: c})
	}
	return NumberRows(rows)
}

// NumberRows assigns row numbers. Explicit numbers are kept and a repeat among
// them rejects the batch. A missing number defaults to index+offset unless an
// explicit row already claims it, in which case the row gets the next number
// above every number in the batch.
func NumberRows(rows []Row) ([]Row, error) {
	claimed := make(map[int]int, len(rows))
	highest := 0
	for i := range rows {
		n := rows[i].Candidate.RowNumber
		if n <= 0 {
			continue
		}
		if first, ok := claimed[n]; ok {
			return nil, fmt.Errorf("%w: row %d appears at positions %d and %d", ErrDuplicateRowNumber, n, first+1, i+1)
		}
		claimed[n] = i
		highest = max(highest, n)
	}

	for i := range rows {
		n := rows[i].Candidate.RowNumber
		if n <= 0 {
			n = i + DefaultRowOffset
			if _, taken := claimed[n]; taken {
				n = max(highest, len(rows)) + 1
			}
			claimed[n] = i
			highest = max(highest, n)
		}
		rows[i].Number = n
		rows[i].Candidate.RowNumber = n
	}
	return rows, nil
}

func peekRowNumber(raw json.RawMessage) int {
	var numbers struct {
		RowNumber       int `json:"rowNumber"`
		SourceRowNumber int `json:"sourceRowNumber"`
	}
	if err := json.Unmarshal(raw, &numbers); err != nil {
		return 0
	}
	if numbers.RowNumber > 0 {
		return numbers.RowNumber
	}
	if numbers.SourceRowNumber > 0 {
		return numbers.SourceRowNumber
	}
	return 0
}

func asShapeError(err error) error {
	var shapeErr *domain.ShapeValidationError
	if errors.As(err, &shapeErr) {
		return shapeErr
	}
	return &domain.ShapeValidationError{Message: err.Error()}
}
