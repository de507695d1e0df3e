package clientimport

import (
	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

// preparedRow is a row after shape validation and owner resolution. err is the
// first problem found; valid rows carry their normalized identity.
type preparedRow struct {
	row      Row
	identity domain.NormalizedIdentity
	owner    string
	err      error
}

func (p preparedRow) valid() bool {
	return p.err == nil
}

func prepareRows(rows []Row, scope domain.Scope, v *rowValidator) []preparedRow {
	prepared := make([]preparedRow, 0, len(rows))
	for _, row := range rows {
		p := preparedRow{row: row}
		switch {
		case row.DecodeErr != nil:
			p.err = row.DecodeErr
		default:
			if err := v.Check(row.Candidate); err != nil {
				p.err = err
				break
			}
			owner, err := scope.ResolveOwner(row.Candidate.OwnerID)
			if err != nil {
				p.err = err
				break
			}
			p.owner = owner
			p.identity = row.Candidate.Identity()
		}
		prepared = append(prepared, p)
	}
	return prepared
}

// batchTally counts how often each key occurs among the valid rows of a batch
// and remembers the row that used it first.
type batchTally struct {
	counts   map[string]int
	firstRow map[string]int
}

func newBatchTally(rows []preparedRow) *batchTally {
	t := &batchTally{
		counts:   make(map[string]int, len(rows)*2),
		firstRow: make(map[string]int, len(rows)*2),
	}
	for _, p := range rows {
		if !p.valid() {
			continue
		}
		for _, key := range batchKeys(p.identity) {
			if increment(t.counts, key) == 1 {
				t.firstRow[key] = p.row.Number
			}
		}
	}
	return t
}

// increment bumps the count of key, treating an absent key as zero, and returns
// the new count.
func increment(counts map[string]int, key string) int {
	current, ok := counts[key]
	if !ok {
		current = 0
	}
	current++
	counts[key] = current
	return current
}

// earlier reports the first row that used one of the identity's keys when that
// row is not rowNumber itself. The document key is checked first.
func (t *batchTally) earlier(rowNumber int, identity domain.NormalizedIdentity) (int, bool) {
	for _, key := range batchKeys(identity) {
		if t.counts[key] < 2 {
			continue
		}
		if first := t.firstRow[key]; first != rowNumber {
			return first, true
		}
	}
	return 0, false
}

func batchKeys(identity domain.NormalizedIdentity) []string {
	if key, ok := identity.DocumentKey(); ok {
		return []string{key, identity.CompositeKey()}
	}
	return []string{identity.CompositeKey()}
}

// classify applies the detection order to one row: invalid shape or owner,
// collision with an earlier row of the batch, existing by document, existing by
// name/city/state, new.
func classify(p preparedRow, tally *batchTally, index *Index) domain.PreviewItem {
	if !p.valid() {
		return domain.ErrorItem{
			Row:     p.row.Number,
			Payload: p.row.payload(),
			Message: p.err.Error(),
		}
	}

	candidate := p.row.Candidate
	if first, ok := tally.earlier(p.row.Number, p.identity); ok {
		return domain.DuplicateItem{
			Row:          p.row.Number,
			Candidate:    candidate,
			Reason:       domain.ReasonWithinFile,
			WithinFileOf: first,
		}
	}

	if id, reason, ok := index.Match(p.identity, ""); ok {
		return domain.DuplicateItem{
			Row:        p.row.Number,
			Candidate:  candidate,
			ExistingID: id,
			Reason:     reason,
		}
	}

	return domain.NewItem{Row: p.row.Number, Candidate: candidate}
}

func classifyAll(prepared []preparedRow, index *Index) []domain.PreviewItem {
	tally := newBatchTally(prepared)
	items := make([]domain.PreviewItem, 0, len(prepared))
	for _, p := range prepared {
		items = append(items, classify(p, tally, index))
	}
	return items
}
