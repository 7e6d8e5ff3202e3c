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

type PublicationRecordedHandler struct {
	dispatcher *service.Dispatcher
	deduper    *util.Deduper
	logger     *zap.Logger
}

func NewPublicationRecordedHandler(dispatcher *service.Dispatcher, deduper *util.Deduper, logger *zap.Logger) *PublicationRecordedHandler {
	return &PublicationRecordedHandler{
		dispatcher: dispatcher,
		deduper:    deduper,
		logger:     logger,
	}
}

// Handle marks the publication anchor for a process. Only the first
// publication matters; later ones fall through the conditional writes.
func (h *PublicationRecordedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.KeyPublicationRecorded, mq.KeyPublicationRecorded+".q", time.Since(start))
	}()

	var p mq.PublicationRecordedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal publication recorded payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return err
	}

	if !h.deduper.AcquireOnce(ctx, "publication_recorded", p.ProcessID) {
		return nil
	}

	return h.dispatcher.PublicationRecorded(ctx, p.ProcessID, p.RecordedAt)
}
