package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"snapwin-admin/monitoring"
)

// Lookup resolves free-text search terms into bounded primary-key sets
// on the related table. The record layer cannot join-then-filter on
// arbitrary text, so ticket queries resolve names to ids first.
//
// Contract: an empty result is an empty slice, never an error. The
// caller must short-circuit on it instead of passing an empty IN-list
// to the main query.
type Lookup struct {
	app   core.App
	redis *redis.Client
	limit int
	ttl   time.Duration
}

func NewLookup(app core.App, redisClient *redis.Client, limit int, ttl time.Duration) *Lookup {
	if limit <= 0 {
		limit = 50
	}
	return &Lookup{
		app:   app,
		redis: redisClient,
		limit: limit,
		ttl:   ttl,
	}
}

// CustomerIDs matches the term against customer name or email.
func (l *Lookup) CustomerIDs(ctx context.Context, term string) ([]string, error) {
	b := &exprBuilder{}
	return l.resolve(ctx, "customers", term, dbx.Or(
		b.match("name", term, MatchContains),
		b.match("email", term, MatchContains),
	))
}

// RaffleIDs matches the term against the raffle item name.
func (l *Lookup) RaffleIDs(ctx context.Context, term string) ([]string, error) {
	b := &exprBuilder{}
	return l.resolve(ctx, "raffles", term, b.match("item_name", term, MatchContains))
}

func (l *Lookup) resolve(ctx context.Context, collection, term string, expr dbx.Expression) ([]string, error) {
	cacheKey := fmt.Sprintf("lookup:%s:%s", collection, term)

	if cached, ok := l.fromCache(ctx, cacheKey); ok {
		monitoring.TrackLookupCache("hit")
		return cached, nil
	}
	monitoring.TrackLookupCache("miss")

	records := []*core.Record{}
	err := l.app.RecordQuery(collection).
		AndWhere(expr).
		OrderBy("created DESC").
		Limit(int64(l.limit)).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", collection, err)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.Id)
	}

	l.toCache(ctx, cacheKey, ids)

	return ids, nil
}

func (l *Lookup) fromCache(ctx context.Context, key string) ([]string, bool) {
	if l.redis == nil {
		return nil, false
	}
	data, err := l.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	ids := []string{}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (l *Lookup) toCache(ctx context.Context, key string, ids []string) {
	if l.redis == nil || l.ttl <= 0 {
		return
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := l.redis.Set(ctx, key, data, l.ttl).Err(); err != nil {
		log.Printf("lookup cache write failed for %s: %v", key, err)
	}
}
