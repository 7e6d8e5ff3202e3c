package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/calendar"
	"recruitops/internal/catalog"
	"recruitops/internal/model"
	"recruitops/pkg/metrics"
)

// PlanBuilder expands a service type's template list into concrete
// milestone rows for one process. Creation and start are decoupled on
// purpose: only process-start-anchored milestones get a date here, every
// other clock waits for its anchor event so that real-world delay in one
// stage cannot corrupt downstream deadlines.
type PlanBuilder struct {
	store  MilestoneStore
	cal    *calendar.Calendar
	logger *zap.Logger
}

func NewPlanBuilder(store MilestoneStore, cal *calendar.Calendar, logger *zap.Logger) *PlanBuilder {
	return &PlanBuilder{
		store:  store,
		cal:    cal,
		logger: logger,
	}
}

// BuildPlan creates the milestone rows for a new process. An unknown
// service type yields an empty plan and a warning, never an error: the
// recruiter's action must not be blocked by a missing catalog entry. A
// repeat call for the same process is a no-op success.
func (b *PlanBuilder) BuildPlan(ctx context.Context, processID int64, serviceType model.ServiceType, startedOn time.Time) ([]model.Milestone, error) {
	templates := catalog.TemplatesFor(serviceType)
	if len(templates) == 0 {
		b.logger.Warn("No milestone templates for service type, skipping plan",
			zap.Int64("process_id", processID),
			zap.String("service_type", string(serviceType)),
		)
		metrics.RecordPlanBuilt(string(serviceType), "unknown_type")
		return nil, nil
	}

	startedOn = calendar.DateOf(startedOn)

	milestones := make([]model.Milestone, 0, len(templates))
	for _, t := range templates {
		m := model.Milestone{
			ProcessID:       processID,
			TemplateName:    t.Name,
			Position:        t.Position,
			ServiceType:     serviceType,
			AnchorEvent:     t.Anchor,
			CompletionEvent: t.Completion,
			DurationDays:    t.DurationDays,
			WarningDays:     t.WarningDays,
		}
		if t.Anchor == model.AnchorProcessStart {
			start := startedOn
			due := b.cal.AddWorkingDays(start, t.DurationDays)
			m.StartAt = &start
			m.DueOn = &due
		}
		milestones = append(milestones, m)
	}

	inserted, err := b.store.InsertPlan(ctx, milestones)
	if err != nil {
		b.logger.Error("Failed to insert milestone plan",
			zap.Int64("process_id", processID),
			zap.String("service_type", string(serviceType)),
			zap.Error(err),
		)
		return nil, err
	}

	if inserted == 0 {
		b.logger.Info("Milestone plan already exists",
			zap.Int64("process_id", processID),
		)
		metrics.RecordPlanBuilt(string(serviceType), "repeat")
		return milestones, nil
	}

	b.logger.Info("Milestone plan created",
		zap.Int64("process_id", processID),
		zap.String("service_type", string(serviceType)),
		zap.Int("milestones", inserted),
	)
	metrics.RecordPlanBuilt(string(serviceType), "created")
	return milestones, nil
}
