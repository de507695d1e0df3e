package client

const (
	ReasonWithinFile          = "duplicate within file"
	ReasonExistingByDocument  = "existing by document"
	ReasonExistingByComposite = "existing by name/city/state"
)

// PreviewItem is the classification of one candidate row. The set of variants is
// closed: ErrorItem, DuplicateItem and NewItem.
type PreviewItem interface {
	RowNumber() int
	previewItem()
}

type ErrorItem struct {
	Row     int
	Payload any
	Message string
}

// DuplicateItem has an empty ExistingID when the collision is with an earlier row
// of the same batch; WithinFileOf then names that row.
type DuplicateItem struct {
	Row          int
	Candidate    CandidateRow
	ExistingID   string
	Reason       string
	WithinFileOf int
}

type NewItem struct {
	Row       int
	Candidate CandidateRow
}

func (i ErrorItem) RowNumber() int     { return i.Row }
func (i DuplicateItem) RowNumber() int { return i.Row }
func (i NewItem) RowNumber() int       { return i.Row }

func (ErrorItem) previewItem()     {}
func (DuplicateItem) previewItem() {}
func (NewItem) previewItem()       {}

func (i DuplicateItem) WithinFile() bool {
	return i.ExistingID == ""
}

type PreviewSummary struct {
	Total          int `json:"total"`
	NewCount       int `json:"newCount"`
	DuplicateCount int `json:"duplicateCount"`
	ErrorCount     int `json:"errorCount"`
}

func Summarize(items []PreviewItem) PreviewSummary {
	summary := PreviewSummary{Total: len(items)}
	for _, item := range items {
		switch item.(type) {
		case ErrorItem:
			summary.ErrorCount++
		case DuplicateItem:
			summary.DuplicateCount++
		case NewItem:
			summary.NewCount++
		}
	}
	return summary
}
