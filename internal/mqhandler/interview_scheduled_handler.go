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

type InterviewScheduledHandler struct {
	dispatcher *service.Dispatcher
	deduper    *util.Deduper
	logger     *zap.Logger
}

func NewInterviewScheduledHandler(dispatcher *service.Dispatcher, deduper *util.Deduper, logger *zap.Logger) *InterviewScheduledHandler {
	return &InterviewScheduledHandler{
		dispatcher: dispatcher,
		deduper:    deduper,
		logger:     logger,
	}
}

// Handle marks the interview anchor the first time an interview date is
// recorded. The "agendar entrevistas" milestone is completed by this same
// event, within the session the date was recorded in.
func (h *InterviewScheduledHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.KeyInterviewScheduled, mq.KeyInterviewScheduled+".q", time.Since(start))
	}()

	var p mq.InterviewScheduledPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal interview scheduled payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "interview_scheduled", p.ProcessID) {
		return nil
	}

	return h.dispatcher.InterviewScheduled(ctx, p.ProcessID, p.RecordedAt)
}
