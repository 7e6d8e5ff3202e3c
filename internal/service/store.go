package service

import (
	"context"
	"time"

	"recruitops/internal/model"
)

// MilestoneStore is what the services need from milestone persistence.
// The production implementation is repository.MilestoneRepository; tests
// use an in-memory fake with the same conditional-write semantics.
type MilestoneStore interface {
	// InsertPlan writes a full plan atomically; rows already present are
	// skipped. Returns the number of rows actually inserted.
	InsertPlan(ctx context.Context, milestones []model.Milestone) (int, error)

	// ListUnstartedByAnchor returns the process's milestones anchored on
	// event whose clock has not started.
	ListUnstartedByAnchor(ctx context.Context, processID int64, event model.AnchorEvent) ([]model.Milestone, error)

	// StartIfUnstarted conditionally sets start/due on one milestone.
	// The null check and the write must be a single atomic update.
	StartIfUnstarted(ctx context.Context, id int64, startAt time.Time, dueOn time.Time) (bool, error)

	// CompleteWhereTriggered conditionally completes the process's open
	// milestones whose completion event matches. First write wins.
	CompleteWhereTriggered(ctx context.Context, processID int64, event model.AnchorEvent, at time.Time) (int, error)

	ListByProcess(ctx context.Context, processID int64) ([]model.Milestone, error)

	// ListOpen returns open milestones with their owning consultant;
	// nil consultantID means all consultants.
	ListOpen(ctx context.Context, consultantID *int64) ([]model.MilestoneWithOwner, error)
}

// ProcessStore reads external process rows; never writes them.
type ProcessStore interface {
	FindMeta(ctx context.Context, id int64) (*model.ProcessMeta, error)
}
