package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/mq"
	"recruitops/internal/service"
	"recruitops/pkg/metrics"
	"recruitops/pkg/util"
)

type StageAdvancedHandler struct {
	dispatcher *service.Dispatcher
	deduper    *util.Deduper
	logger     *zap.Logger
}

func NewStageAdvancedHandler(dispatcher *service.Dispatcher, deduper *util.Deduper, logger *zap.Logger) *StageAdvancedHandler {
	return &StageAdvancedHandler{
		dispatcher: dispatcher,
		deduper:    deduper,
		logger:     logger,
	}
}

// Handle maps a pipeline stage transition onto its anchor event. The same
// process legitimately advances through several stages, so the dedup key
// carries the target stage.
func (h *StageAdvancedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.KeyStageAdvanced, mq.KeyStageAdvanced+".q", time.Since(start))
	}()

	var p mq.StageAdvancedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal stage advanced payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return err
	}

	handler := fmt.Sprintf("stage_advanced.%s.%s", p.FromStage, p.ToStage)
	if !h.deduper.AcquireOnce(ctx, handler, p.ProcessID) {
		return nil
	}

	return h.dispatcher.StageAdvanced(ctx, p.ProcessID, p.FromStage, p.ToStage, p.MovedAt)
}
