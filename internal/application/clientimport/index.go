package clientimport

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

// Index maps the document key and the composite key of every visible client to
// the ids sharing it, in load order. A lookup returns the earliest loaded id.
type Index struct {
	byDocument  map[string][]string
	byComposite map[string][]string
	size        int
}

func NewIndex(records []domain.ExistingRecord) *Index {
	ix := &Index{
		byDocument:  make(map[string][]string, len(records)),
		byComposite: make(map[string][]string, len(records)),
	}
	for _, r := range records {
		ix.Add(r.ID, r.Identity())
	}
	return ix
}

// BuildIndex loads the caller's visible clients once per batch.
func BuildIndex(ctx context.Context, source domain.ExistingRecordSource, scope domain.Scope) (*Index, error) {
	records, err := source.ListVisible(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildIndex, err)
	}
	return NewIndex(records), nil
}

func (ix *Index) Len() int {
	return ix.size
}

func (ix *Index) Add(id string, identity domain.NormalizedIdentity) {
	if key, ok := identity.DocumentKey(); ok {
		ix.byDocument[key] = append(ix.byDocument[key], id)
	}
	key := identity.CompositeKey()
	ix.byComposite[key] = append(ix.byComposite[key], id)
	ix.size++
}

// Move re-keys id after its identity changed from before to after.
func (ix *Index) Move(id string, before, after domain.NormalizedIdentity) {
	if key, ok := before.DocumentKey(); ok {
		ix.byDocument[key] = without(ix.byDocument[key], id)
	}
	key := before.CompositeKey()
	ix.byComposite[key] = without(ix.byComposite[key], id)
	ix.size--
	ix.Add(id, after)
}

// Match looks the identity up by document first, then by composite key, ignoring
// excludeID. It returns the matching id and the reason of the match.
func (ix *Index) Match(identity domain.NormalizedIdentity, excludeID string) (string, string, bool) {
	if key, ok := identity.DocumentKey(); ok {
		if id, found := first(ix.byDocument[key], excludeID); found {
			return id, domain.ReasonExistingByDocument, true
		}
	}
	if id, found := first(ix.byComposite[identity.CompositeKey()], excludeID); found {
		return id, domain.ReasonExistingByComposite, true
	}
	return "", "", false
}

func first(ids []string, excludeID string) (string, bool) {
	for _, id := range ids {
		if id != excludeID {
			return id, true
		}
	}
	return "", false
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
