// Package redis provides Redis persistence for workflow drafts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix = "stateflow:draft:"
	draftIndexKey  = "stateflow:drafts"
)

// Persistence stores each draft as a JSON string and keeps a sorted set of ids
// scored by creation time for listing.
type Persistence struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewPersistence connects to the Redis server at redisURL (redis:// or rediss://).
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return &Persistence{client: client, logger: logger}, nil
}

// Close closes the Redis client.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Drafts returns every stored draft, newest first.
func (p *Persistence) Drafts(ctx context.Context) ([]*models.Draft, error) {
	ids, err := p.client.ZRevRange(ctx, draftIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	drafts := make([]*models.Draft, 0, len(ids))
	if len(ids) == 0 {
		return drafts, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = draftKeyPrefix + id
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}

	for i, value := range values {
		body, ok := value.(string)
		if !ok {
			p.logger.WarnContext(ctx, "draft indexed without a value", "draft_id", ids[i])

			continue
		}

		draft, err := decode(ids[i], body)
		if err != nil {
			return nil, err
		}

		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// DraftByID loads one draft.
func (p *Persistence) DraftByID(ctx context.Context, id string) (*models.Draft, error) {
	body, err := p.client.Get(ctx, draftKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewDraftError("DraftByID", id, persistence.ErrDraftNotFound)
		}

		return nil, fmt.Errorf("failed to fetch draft %s: %w", id, err)
	}

	return decode(id, body)
}

// SaveDraft writes the draft and indexes it in one transaction.
func (p *Persistence) SaveDraft(ctx context.Context, draft *models.Draft) error {
	if draft.ID == "" {
		return &persistence.DraftError{Op: "SaveDraft", Err: persistence.ErrInvalidDraft, Message: "missing draft id"}
	}

	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}

	draft.UpdatedAt = now

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft %s: %w", draft.ID, err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, draftKeyPrefix+draft.ID, data, 0)
		pipe.ZAdd(ctx, draftIndexKey, redis.Z{Score: float64(draft.CreatedAt.UnixNano()), Member: draft.ID})

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save draft %s: %w", draft.ID, err)
	}

	return nil
}

// DeleteDraft removes the draft and its index entry.
func (p *Persistence) DeleteDraft(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, draftKeyPrefix+id)
		pipe.ZRem(ctx, draftIndexKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewDraftError("DeleteDraft", id, persistence.ErrDraftNotFound)
	}

	return nil
}

func decode(id, body string) (*models.Draft, error) {
	var draft models.Draft

	err := json.Unmarshal([]byte(body), &draft)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft %s: %w", id, err)
	}

	return &draft, nil
}
