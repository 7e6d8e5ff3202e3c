package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/calendar"
	"recruitops/internal/model"
	"recruitops/pkg/metrics"
)

// StagePair identifies a pipeline transition raised by the stage-move
// module. Only the pairs a template anchors on map to an event; every
// other transition is ignored here.
type StagePair struct {
	From string
	To   string
}

var stageEvents = map[StagePair]model.AnchorEvent{
	{From: "sourcing", To: "presented"}: model.AnchorFirstPresentation,
	{From: "presented", To: "approved"}: model.AnchorApprovalDone,
}

// Dispatcher applies anchor events to milestone rows: it starts every
// still-unstarted milestone anchored on the event and completes the
// milestone the event is the source of. All writes are conditional on the
// target field being null, so repeated or concurrent deliveries of the
// same event are safe no-ops. The dispatcher changes milestone state and
// nothing else; notifications are the alert reader's concern.
type Dispatcher struct {
	store     MilestoneStore
	processes ProcessStore
	cal       *calendar.Calendar
	logger    *zap.Logger
}

func NewDispatcher(store MilestoneStore, processes ProcessStore, cal *calendar.Calendar, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		processes: processes,
		cal:       cal,
		logger:    logger,
	}
}

// MarkAnchorEvent records that a business event occurred for a process.
func (d *Dispatcher) MarkAnchorEvent(ctx context.Context, processID int64, event model.AnchorEvent, occurredAt time.Time) error {
	if event == model.AnchorProcessStart {
		// Applied at plan time by the builder; nothing to anchor here.
		d.logger.Warn("Ignoring process-start as anchor event",
			zap.Int64("process_id", processID),
		)
		return nil
	}

	started, err := d.startAnchored(ctx, processID, event, occurredAt)
	if err != nil {
		return err
	}

	completed, err := d.store.CompleteWhereTriggered(ctx, processID, event, occurredAt)
	if err != nil {
		return fmt.Errorf("failed to complete milestones for %s: %w", event, err)
	}

	if started == 0 && completed == 0 {
		return d.recordNoop(ctx, processID, event)
	}

	metrics.RecordAnchorEvent(string(event), "applied")
	d.logger.Info("Anchor event applied",
		zap.Int64("process_id", processID),
		zap.String("event", string(event)),
		zap.Int("started", started),
		zap.Int("completed", completed),
	)

	d.checkOrdering(ctx, processID, event)
	return nil
}

// startAnchored starts every unstarted milestone anchored on the event.
// Due dates depend on per-row durations, so each row is advanced on the
// calendar and written with its own single conditional update.
func (d *Dispatcher) startAnchored(ctx context.Context, processID int64, event model.AnchorEvent, occurredAt time.Time) (int, error) {
	unstarted, err := d.store.ListUnstartedByAnchor(ctx, processID, event)
	if err != nil {
		return 0, fmt.Errorf("failed to list unstarted milestones for %s: %w", event, err)
	}

	started := 0
	for _, m := range unstarted {
		due := d.cal.AddWorkingDays(calendar.DateOf(occurredAt), m.DurationDays)
		ok, err := d.store.StartIfUnstarted(ctx, m.ID, occurredAt, due)
		if err != nil {
			return started, fmt.Errorf("failed to start milestone %q: %w", m.TemplateName, err)
		}
		if ok {
			started++
			d.logger.Debug("Milestone clock started",
				zap.Int64("process_id", processID),
				zap.String("template", m.TemplateName),
				zap.Time("due_on", due),
			)
		}
	}
	return started, nil
}

// recordNoop classifies an event that touched nothing: a duplicate
// delivery of an event the plan does use, an event no milestone of the
// plan anchors or completes on, or an event for a process this engine
// has no plan for.
func (d *Dispatcher) recordNoop(ctx context.Context, processID int64, event model.AnchorEvent) error {
	meta, err := d.processes.FindMeta(ctx, processID)
	if err != nil {
		// Can't tell which; count as duplicate and keep going.
		d.logger.Warn("Failed to check process for no-op event",
			zap.Int64("process_id", processID),
			zap.Error(err),
		)
		metrics.RecordAnchorEvent(string(event), "duplicate")
		return nil
	}

	if meta == nil {
		metrics.RecordAnchorEvent(string(event), "unknown_process")
		d.logger.Warn("Anchor event for unknown process",
			zap.Int64("process_id", processID),
			zap.String("event", string(event)),
		)
		return nil
	}

	plan, err := d.store.ListByProcess(ctx, processID)
	if err != nil {
		d.logger.Warn("Failed to load plan for no-op event",
			zap.Int64("process_id", processID),
			zap.Error(err),
		)
		metrics.RecordAnchorEvent(string(event), "duplicate")
		return nil
	}

	matched := false
	for _, m := range plan {
		if m.AnchorEvent == event || m.CompletionEvent == event {
			matched = true
			break
		}
	}
	if !matched {
		metrics.RecordAnchorEvent(string(event), "unmatched")
		d.logger.Debug("Anchor event matches no milestone of the plan",
			zap.Int64("process_id", processID),
			zap.String("service_type", string(meta.ServiceType)),
			zap.String("event", string(event)),
		)
		return nil
	}

	metrics.RecordAnchorEvent(string(event), "duplicate")
	d.logger.Debug("Anchor event was a no-op",
		zap.Int64("process_id", processID),
		zap.String("event", string(event)),
	)
	return nil
}

// checkOrdering surfaces events that arrived while an earlier milestone of
// the plan was still open. The event has already been processed; refusing
// it would strand the pipeline, so a gap is observability only.
func (d *Dispatcher) checkOrdering(ctx context.Context, processID int64, event model.AnchorEvent) {
	plan, err := d.store.ListByProcess(ctx, processID)
	if err != nil {
		d.logger.Warn("Failed to load plan for ordering check",
			zap.Int64("process_id", processID),
			zap.Error(err),
		)
		return
	}

	touched := 0
	for _, m := range plan {
		if m.CompletionEvent == event || m.AnchorEvent == event {
			touched = m.Position
			break
		}
	}
	if touched == 0 {
		return
	}

	for _, m := range plan {
		if m.Position < touched && m.Open() {
			metrics.RecordOutOfOrderEvent(string(event))
			d.logger.Warn("Anchor event arrived before predecessor completed",
				zap.Int64("process_id", processID),
				zap.String("event", string(event)),
				zap.String("open_predecessor", m.TemplateName),
			)
			return
		}
	}
}

// PublicationRecorded is called the first time a publication exists for a
// process.
func (d *Dispatcher) PublicationRecorded(ctx context.Context, processID int64, at time.Time) error {
	return d.MarkAnchorEvent(ctx, processID, model.AnchorPublicationDone, at)
}

// StageAdvanced maps a pipeline transition onto its anchor event.
// Transitions no template anchors on are ignored.
func (d *Dispatcher) StageAdvanced(ctx context.Context, processID int64, from, to string, at time.Time) error {
	event, ok := stageEvents[StagePair{From: from, To: to}]
	if !ok {
		d.logger.Debug("Stage transition has no anchored milestone",
			zap.Int64("process_id", processID),
			zap.String("from", from),
			zap.String("to", to),
		)
		return nil
	}
	return d.MarkAnchorEvent(ctx, processID, event, at)
}

// InterviewScheduled is called when an interview date is first recorded.
func (d *Dispatcher) InterviewScheduled(ctx context.Context, processID int64, at time.Time) error {
	return d.MarkAnchorEvent(ctx, processID, model.AnchorInterviewDone, at)
}

// TestScheduled is called when a test application date is first recorded.
func (d *Dispatcher) TestScheduled(ctx context.Context, processID int64, at time.Time) error {
	return d.MarkAnchorEvent(ctx, processID, model.AnchorTestDone, at)
}

// ProcessClosed is called when the process is formally closed; it
// completes the outbound report/result milestone.
func (d *Dispatcher) ProcessClosed(ctx context.Context, processID int64, at time.Time) error {
	return d.MarkAnchorEvent(ctx, processID, model.AnchorClosureDone, at)
}
