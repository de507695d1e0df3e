package clientimport

import (
	"context"
	"time"
)

// ImportCompletedEvent is published once per finished import call.
type ImportCompletedEvent struct {
	RunID      string    `json:"runId"`
	UserID     string    `json:"userId"`
	Role       string    `json:"role"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	CreatedIDs []string  `json:"createdIds"`
	UpdatedIDs []string  `json:"updatedIds"`
	Aborted    bool      `json:"aborted"`
	OccurredAt time.Time `json:"occurredAt"`
}

type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, event ImportCompletedEvent) error
}
