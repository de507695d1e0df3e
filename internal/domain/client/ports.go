package client

import "context"

// ExistingRecordSource loads every client visible under a scope in the store's
// natural order (oldest first).
type ExistingRecordSource interface {
	ListVisible(ctx context.Context, scope Scope) ([]ExistingRecord, error)
}

// ClientRepository is the write side of the client store. Create and Update
// return ErrUniqueViolation when the fingerprint index rejects the write and
// ErrStoreUnavailable when the store cannot be reached.
type ClientRepository interface {
	FindByID(ctx context.Context, scope Scope, id string) (*Client, error)
	Create(ctx context.Context, c Client) error
	Update(ctx context.Context, c Client) error
}
