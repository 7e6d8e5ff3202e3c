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

type ProcessClosedHandler struct {
	dispatcher *service.Dispatcher
	deduper    *util.Deduper
	logger     *zap.Logger
}

func NewProcessClosedHandler(dispatcher *service.Dispatcher, deduper *util.Deduper, logger *zap.Logger) *ProcessClosedHandler {
	return &ProcessClosedHandler{
		dispatcher: dispatcher,
		deduper:    deduper,
		logger:     logger,
	}
}

// Handle completes the outbound report/result milestone when a process is
// formally closed.
func (h *ProcessClosedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.KeyProcessClosed, mq.KeyProcessClosed+".q", time.Since(start))
	}()

	var p mq.ProcessClosedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal process closed payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "process_closed", p.ProcessID) {
		return nil
	}

	return h.dispatcher.ProcessClosed(ctx, p.ProcessID, p.ClosedAt)
}
