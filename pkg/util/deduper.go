package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper suppresses redelivered events in front of the mq handlers. It is
// noise reduction only: milestone writes are conditional updates, so a
// duplicate that slips through is still a safe no-op.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to acquire a dedup lock for a handler + process pair.
// Returns true if this is the first time processing, false on a duplicate.
// When redis is unavailable it fails open and allows processing.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, processID int64) bool {
	key := fmt.Sprintf("dedup:%s:%d", handler, processID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.Int64("process_id", processID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.Int64("process_id", processID),
			zap.String("dedup_key", key),
		)
	}

	return ok
}
