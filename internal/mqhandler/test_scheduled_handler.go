package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/mq"
	"recruitops/internal/service"
	"recruitops/pkg/metrics"
	"recruitops/pkg/util"
)

type TestScheduledHandler struct {
	dispatcher *service.Dispatcher
	deduper    *util.Deduper
	logger     *zap.Logger
}

func NewTestScheduledHandler(dispatcher *service.Dispatcher, deduper *util.Deduper, logger *zap.Logger) *TestScheduledHandler {
	return &TestScheduledHandler{
		dispatcher: dispatcher,
		deduper:    deduper,
		logger:     logger,
	}
}

// Handle marks the test anchor the first time a test application date is
// recorded.
func (h *TestScheduledHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.KeyTestScheduled, mq.KeyTestScheduled+".q", time.Since(start))
	}()

	var p mq.TestScheduledPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal test scheduled payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "test_scheduled", p.ProcessID) {
		return nil
	}

	return h.dispatcher.TestScheduled(ctx, p.ProcessID, p.RecordedAt)
}
