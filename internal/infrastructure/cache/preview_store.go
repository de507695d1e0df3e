package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	app "github.com/mohammadpnp/client-import/internal/application/clientimport"
)

const keyPrefix = "client-import:preview:"

// PreviewStore keeps preview snapshots in redis under a TTL.
type PreviewStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreviewStore(client *redis.Client, ttl time.Duration) *PreviewStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PreviewStore{client: client, ttl: ttl}
}

func (s *PreviewStore) Save(ctx context.Context, snapshot app.PreviewSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal preview snapshot: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+snapshot.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store preview snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}

func (s *PreviewStore) Load(ctx context.Context, id string) (app.PreviewSnapshot, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return app.PreviewSnapshot{}, app.ErrPreviewNotAvailable
		}
		return app.PreviewSnapshot{}, fmt.Errorf("load preview snapshot %s: %w", id, err)
	}

	var snapshot app.PreviewSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return app.PreviewSnapshot{}, fmt.Errorf("decode preview snapshot %s: %w", id, err)
	}
	return snapshot, nil
}

// Ping reports whether redis is reachable; used by the health check.
func (s *PreviewStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
