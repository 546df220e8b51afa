package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/hrnotify/internal/notification/entity"
	"github.com/shandysiswandi/hrnotify/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPreference = "notification:preference:"

// Cache keeps user preferences in redis. Entries expire after ttl so a
// missed invalidation heals on its own.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	ins    instrument.Instrumentation
}

// New returns a cache whose entries expire after ttl.
func New(client redis.UniversalClient, ttl time.Duration, ins instrument.Instrumentation) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, ins: ins}
}

// GetPreference returns nil without an error on a miss or an unreadable entry.
func (c *Cache) GetPreference(ctx context.Context, userID int64) (_ *entity.UserPreference, err error) {
	ctx, span := c.startSpan(ctx, "GetPreference")
	defer func() { c.endSpan(span, err) }()

	raw, err := c.client.Get(ctx, preferenceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pref entity.UserPreference
	if err := json.Unmarshal(raw, &pref); err != nil {
		// drop the corrupt entry and read through
		_ = c.client.Del(ctx, preferenceKey(userID)).Err()
		return nil, nil
	}

	return &pref, nil
}

func (c *Cache) SetPreference(ctx context.Context, pref entity.UserPreference) (err error) {
	ctx, span := c.startSpan(ctx, "SetPreference")
	defer func() { c.endSpan(span, err) }()

	raw, err := json.Marshal(pref)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, preferenceKey(pref.UserID), raw, c.ttl).Err()
}

func (c *Cache) DeletePreference(ctx context.Context, userID int64) (err error) {
	ctx, span := c.startSpan(ctx, "DeletePreference")
	defer func() { c.endSpan(span, err) }()

	return c.client.Del(ctx, preferenceKey(userID)).Err()
}

func preferenceKey(userID int64) string {
	return keyPreference + strconv.FormatInt(userID, 10)
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("notification.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
