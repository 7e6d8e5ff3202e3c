package model

import "time"

// ServiceType selects which milestone plan a process gets.
type ServiceType string

const (
	ServiceFullCycle  ServiceType = "full-cycle"
	ServiceLongList   ServiceType = "long-list"
	ServiceTargeted   ServiceType = "targeted"
	ServiceEvaluation ServiceType = "evaluation"
	ServiceTest       ServiceType = "test"
)

// AnchorEvent is a business event that starts or completes a milestone
// clock. The set is fixed; collaborating modules raise these through the
// dispatcher, never by writing milestone rows directly.
type AnchorEvent string

const (
	AnchorProcessStart      AnchorEvent = "process-start"
	AnchorPublicationDone   AnchorEvent = "publication-done"
	AnchorFirstPresentation AnchorEvent = "first-presentation-done"
	AnchorApprovalDone      AnchorEvent = "approval-done"
	AnchorInterviewDone     AnchorEvent = "interview-done"
	AnchorTestDone          AnchorEvent = "test-done"
	AnchorClosureDone       AnchorEvent = "closure-done"
)

// MilestoneState is derived from the stored dates at read time and never
// persisted, so it cannot drift out of sync with them.
type MilestoneState string

const (
	StatePending  MilestoneState = "pending"
	StateOnTrack  MilestoneState = "on_track"
	StateUpcoming MilestoneState = "upcoming"
	StateOverdue  MilestoneState = "overdue"
	StateDone     MilestoneState = "done"
)

// Milestone is one scheduled deadline inside a process. Identity is
// (ProcessID, TemplateName). Duration, warning lead and the trigger events
// are copied from the template at plan time so in-flight processes keep
// their original plan across catalog changes.
type Milestone struct {
	ID              int64       `json:"id"`
	ProcessID       int64       `json:"process_id"`
	TemplateName    string      `json:"template_name"`
	Position        int         `json:"position"`
	ServiceType     ServiceType `json:"service_type"`
	AnchorEvent     AnchorEvent `json:"anchor_event"`
	CompletionEvent AnchorEvent `json:"completion_event"`
	DurationDays    int         `json:"duration_days"`
	WarningDays     int         `json:"warning_days"`
	StartAt         *time.Time  `json:"start_at,omitempty"`
	DueOn           *time.Time  `json:"due_on,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Open reports whether the milestone still needs attention: not yet done.
func (m *Milestone) Open() bool {
	return m.CompletedAt == nil
}

// Started reports whether the anchor event has fired.
func (m *Milestone) Started() bool {
	return m.StartAt != nil
}

// ZeroDuration marks the "agendar" style milestones that must close within
// the working session their triggering date is recorded in.
func (m *Milestone) ZeroDuration() bool {
	return m.DurationDays == 0
}

// MilestoneWithOwner is a milestone joined with the consultant who owns
// its process, for dashboard and alert-feed reads.
type MilestoneWithOwner struct {
	Milestone
	ConsultantID int64 `json:"consultant_id"`
}

// Holiday is a non-working calendar date. Rows are maintained by an
// external module; this engine only reads them.
type Holiday struct {
	Day  time.Time `json:"day"`
	Name string    `json:"name"`
}

// ProcessMeta is the slice of an external process row this engine reads:
// plan selection and dashboard grouping. Never written here.
type ProcessMeta struct {
	ID           int64       `json:"id"`
	ServiceType  ServiceType `json:"service_type"`
	ConsultantID int64       `json:"consultant_id"`
	StartedOn    time.Time   `json:"started_on"`
}
