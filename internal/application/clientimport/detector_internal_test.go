package clientimport

import (
	"testing"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

func TestIncrementStartsFromZero(t *testing.T) {
	t.Parallel()

	counts := map[string]int{}
	if got := increment(counts, "k"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := increment(counts, "k"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if counts["other"] != 0 {
		t.Fatal("untouched key must stay absent")
	}
}

func TestBatchTallyFlagsOnlyLaterRows(t *testing.T) {
	t.Parallel()

	rows := []preparedRow{
		{row: Row{Number: 1}, identity: domain.Normalize("Acme", "Campinas", "SP", "123")},
		{row: Row{Number: 2}, identity: domain.Normalize("Beta", "", "", "123")},
		{row: Row{Number: 3}, identity: domain.Normalize("acme", "campinas", "sp", "")},
		{row: Row{Number: 4}, identity: domain.Normalize("Gamma", "", "", "")},
	}
	tally := newBatchTally(rows)

	if _, ok := tally.earlier(1, rows[0].identity); ok {
		t.Fatal("first occurrence must not be flagged")
	}
	if first, ok := tally.earlier(2, rows[1].identity); !ok || first != 1 {
		t.Fatalf("row 2 should collide with row 1 by document, got %d %v", first, ok)
	}
	if first, ok := tally.earlier(3, rows[2].identity); !ok || first != 1 {
		t.Fatalf("row 3 should collide with row 1 by composite, got %d %v", first, ok)
	}
	if _, ok := tally.earlier(4, rows[3].identity); ok {
		t.Fatal("row 4 is unique")
	}
}

func TestBatchDigestIgnoresAttributes(t *testing.T) {
	t.Parallel()

	a := []preparedRow{{row: Row{Number: 1}, owner: "u1", identity: domain.Normalize("Acme", "", "", "")}}
	b := []preparedRow{{
		row:      Row{Number: 1, Candidate: domain.CandidateRow{Attributes: domain.Attributes{"email": "x"}}},
		owner:    "u1",
		identity: domain.Normalize("ACME", "", "", ""),
	}}
	c := []preparedRow{{row: Row{Number: 1}, owner: "u2", identity: domain.Normalize("Acme", "", "", "")}}

	if batchDigest(a) != batchDigest(b) {
		t.Fatal("attributes must not change the digest")
	}
	if batchDigest(a) == batchDigest(c) {
		t.Fatal("owner must change the digest")
	}
}
