package clientimport_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	app "github.com/mohammadpnp/client-import/internal/application/clientimport"
	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

type fakeSource struct {
	records []domain.ExistingRecord
	err     error
	calls   int
}

func (f *fakeSource) ListVisible(_ context.Context, scope domain.Scope) ([]domain.ExistingRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.ExistingRecord, 0, len(f.records))
	for _, r := range f.records {
		if scope.Visible(r.OwnerID) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeRepo struct {
	mu      sync.Mutex
	clients map[string]domain.Client
	created []domain.Client
	updated []domain.Client

	createErr  func(c domain.Client) error
	updateErr  func(c domain.Client) error
	findErr    error
	failAfterN int
	writes     int
}

func newFakeRepo(existing ...domain.Client) *fakeRepo {
	r := &fakeRepo{clients: make(map[string]domain.Client)}
	for _, c := range existing {
		r.clients[c.ID] = c
	}
	return r
}

func (r *fakeRepo) FindByID(_ context.Context, scope domain.Scope, id string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.clients[id]
	if !ok || !scope.Visible(c.OwnerID) {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

func (r *fakeRepo) Create(_ context.Context, c domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.beforeWrite(); err != nil {
		return err
	}
	if r.createErr != nil {
		if err := r.createErr(c); err != nil {
			return err
		}
	}
	r.clients[c.ID] = c
	r.created = append(r.created, c)
	return nil
}

func (r *fakeRepo) Update(_ context.Context, c domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.beforeWrite(); err != nil {
		return err
	}
	if r.updateErr != nil {
		if err := r.updateErr(c); err != nil {
			return err
		}
	}
	r.clients[c.ID] = c
	r.updated = append(r.updated, c)
	return nil
}

func (r *fakeRepo) beforeWrite() error {
	if r.failAfterN > 0 && r.writes >= r.failAfterN {
		return errors.Join(domain.ErrStoreUnavailable, errors.New("connection refused"))
	}
	r.writes++
	return nil
}

type fakeRuns struct {
	runs []domain.ImportRun
	err  error
}

func (f *fakeRuns) Record(_ context.Context, run domain.ImportRun) error {
	f.runs = append(f.runs, run)
	return f.err
}

type fakeSnapshots struct {
	items map[string]app.PreviewSnapshot
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{items: make(map[string]app.PreviewSnapshot)}
}

func (f *fakeSnapshots) Save(_ context.Context, s app.PreviewSnapshot) error {
	f.items[s.ID] = s
	return nil
}

func (f *fakeSnapshots) Load(_ context.Context, id string) (app.PreviewSnapshot, error) {
	s, ok := f.items[id]
	if !ok {
		return app.PreviewSnapshot{}, app.ErrPreviewNotAvailable
	}
	return s, nil
}

type fakePublisher struct {
	events []app.ImportCompletedEvent
	err    error
}

func (f *fakePublisher) PublishImportCompleted(_ context.Context, e app.ImportCompletedEvent) error {
	f.events = append(f.events, e)
	return f.err
}

var sellerScope = domain.Scope{Role: domain.RoleSeller, UserID: "u1"}

func existing(id, owner, name, city, state, document string) domain.ExistingRecord {
	return domain.ExistingRecord{ID: id, OwnerID: owner, Name: name, City: city, State: state, Document: document}
}

func storedClient(id, owner, name, city, state, document string) domain.Client {
	return domain.NewClient(id, owner, domain.KnownIdentityFields{Name: name, City: city, State: state, Document: document}, nil)
}

func decodeRows(t *testing.T, raw string) []app.Row {
	t.Helper()
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &raws); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	rows, err := app.DecodeRows(raws)
	if err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	return rows
}
