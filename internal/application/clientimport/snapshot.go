package clientimport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

const (
	KindError     = "error"
	KindDuplicate = "duplicate"
	KindNew       = "new"
)

// SnapshotRow is the stored classification of one previewed row.
type SnapshotRow struct {
	RowNumber    int    `json:"rowNumber"`
	Kind         string `json:"kind"`
	ExistingID   string `json:"existingId,omitempty"`
	Reason       string `json:"reason,omitempty"`
	WithinFileOf int    `json:"withinFileOf,omitempty"`
}

// PreviewSnapshot is what a preview leaves behind so a later import can tell
// whether the classification the caller reviewed still holds.
type PreviewSnapshot struct {
	ID        string                `json:"id"`
	UserID    string                `json:"userId"`
	Digest    string                `json:"digest"`
	Rows      []SnapshotRow         `json:"rows"`
	Summary   domain.PreviewSummary `json:"summary"`
	CreatedAt time.Time             `json:"createdAt"`
}

// PreviewStore keeps snapshots for a bounded time. Load returns
// ErrPreviewNotAvailable when the id is unknown or expired.
type PreviewStore interface {
	Save(ctx context.Context, snapshot PreviewSnapshot) error
	Load(ctx context.Context, id string) (PreviewSnapshot, error)
}

func snapshotRows(items []domain.PreviewItem) []SnapshotRow {
	rows := make([]SnapshotRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, snapshotRow(item))
	}
	return rows
}

func snapshotRow(item domain.PreviewItem) SnapshotRow {
	switch it := item.(type) {
	case domain.DuplicateItem:
		return SnapshotRow{
			RowNumber:    it.Row,
			Kind:         KindDuplicate,
			ExistingID:   it.ExistingID,
			Reason:       it.Reason,
			WithinFileOf: it.WithinFileOf,
		}
	case domain.NewItem:
		return SnapshotRow{RowNumber: it.Row, Kind: KindNew}
	default:
		return SnapshotRow{RowNumber: item.RowNumber(), Kind: KindError}
	}
}

// batchDigest hashes what drives classification: row numbers, resolved owners and
// identity keys. Non-identity attributes and actions do not change it.
func batchDigest(prepared []preparedRow) string {
	h := sha256.New()
	for _, p := range prepared {
		h.Write([]byte(strconv.Itoa(p.row.Number)))
		h.Write([]byte{0})
		if !p.valid() {
			h.Write([]byte("!"))
			h.Write([]byte{'\n'})
			continue
		}
		h.Write([]byte(p.owner))
		h.Write([]byte{0})
		h.Write([]byte(p.identity.Fingerprint()))
		h.Write([]byte{0})
		h.Write([]byte(p.identity.CompositeKey()))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
