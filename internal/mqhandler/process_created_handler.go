package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/model"
	"recruitops/internal/mq"
	"recruitops/internal/service"
	"recruitops/pkg/metrics"
	"recruitops/pkg/util"
)

type ProcessCreatedHandler struct {
	builder *service.PlanBuilder
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewProcessCreatedHandler(builder *service.PlanBuilder, deduper *util.Deduper, logger *zap.Logger) *ProcessCreatedHandler {
	return &ProcessCreatedHandler{
		builder: builder,
		deduper: deduper,
		logger:  logger,
	}
}

// Handle expands the milestone plan for a freshly created process. Safe
// under redelivery: the plan insert is keyed on (process, template).
func (h *ProcessCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.KeyProcessCreated, mq.KeyProcessCreated+".q", time.Since(start))
	}()

	var p mq.ProcessCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal process created payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "process_created", p.ProcessID) {
		return nil
	}

	h.logger.Info("Building milestone plan",
		zap.Int64("process_id", p.ProcessID),
		zap.String("service_type", p.ServiceType),
	)

	_, err := h.builder.BuildPlan(ctx, p.ProcessID, model.ServiceType(p.ServiceType), p.StartedOn)
	return err
}
