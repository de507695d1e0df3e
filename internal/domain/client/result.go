package client

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type RowError struct {
	RowNumber  int    `json:"rowNumber"`
	ClientName string `json:"clientName"`
	Message    string `json:"message"`
}

// ImportResult keeps Created+Updated+Skipped+Failed equal to the rows processed.
type ImportResult struct {
	Created    int
	Updated    int
	Skipped    int
	Failed     int
	Errors     []RowError
	CreatedIDs []string
	UpdatedIDs []string
}

func (r ImportResult) Total() int {
	return r.Created + r.Updated + r.Skipped + r.Failed
}

func (r *ImportResult) RecordCreated(id string) {
	r.Created++
	r.CreatedIDs = append(r.CreatedIDs, id)
}

func (r *ImportResult) RecordUpdated(id string) {
	r.Updated++
	r.UpdatedIDs = append(r.UpdatedIDs, id)
}

func (r *ImportResult) RecordSkipped() {
	r.Skipped++
}

func (r *ImportResult) RecordFailed(rowNumber int, clientName, message string) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{
		RowNumber:  rowNumber,
		ClientName: clientName,
		Message:    message,
	})
}
