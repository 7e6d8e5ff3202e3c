package calendar

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/model"
)

// HolidaySource loads the full holiday list from wherever it is kept.
// Implemented by repository.HolidayRepository.
type HolidaySource interface {
	ListAll(ctx context.Context) ([]model.Holiday, error)
}

// Directory caches the holiday list for the process lifetime and serves it
// to the Calendar as an immutable snapshot. Refreshes happen at startup
// and on a low-frequency ticker, never on the request path, so calendar
// math never waits on the database. A failed refresh keeps the previous
// snapshot; before the first successful load the snapshot is empty and the
// calendar degrades to weekends-only.
type Directory struct {
	source   HolidaySource
	logger   *zap.Logger
	snapshot atomic.Value // HolidaySet
}

func NewDirectory(source HolidaySource, logger *zap.Logger) *Directory {
	d := &Directory{source: source, logger: logger}
	d.snapshot.Store(HolidaySet{})
	return d
}

// Holidays returns the current snapshot. Safe for concurrent callers.
func (d *Directory) Holidays() HolidaySet {
	return d.snapshot.Load().(HolidaySet)
}

// Refresh reloads the holiday list. On failure the previous snapshot
// stays in place and the error is reported to the caller after logging.
func (d *Directory) Refresh(ctx context.Context) error {
	holidays, err := d.source.ListAll(ctx)
	if err != nil {
		d.logger.Warn("Holiday refresh failed, keeping previous snapshot",
			zap.Int("cached_holidays", len(d.Holidays())),
			zap.Error(err),
		)
		return err
	}

	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[dayKey(h.Day)] = struct{}{}
	}
	d.snapshot.Store(set)

	d.logger.Info("Holiday directory refreshed",
		zap.Int("holidays", len(set)),
	)
	return nil
}

// Run refreshes on a ticker until ctx is cancelled. Call in a goroutine
// after an initial Refresh.
func (d *Directory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = d.Refresh(ctx)
		}
	}
}
