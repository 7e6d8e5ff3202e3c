package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"recruitops/internal/calendar"
	"recruitops/internal/model"
	"recruitops/pkg/metrics"
)

// OpenMilestone is an open milestone with its alert state as of a given
// instant.
type OpenMilestone struct {
	model.MilestoneWithOwner
	State model.MilestoneState `json:"state"`
}

// StateCounts buckets open milestones by alert state.
type StateCounts struct {
	Pending  int `json:"pending"`
	OnTrack  int `json:"on_track"`
	Upcoming int `json:"upcoming"`
	Overdue  int `json:"overdue"`
}

func (c *StateCounts) add(s model.MilestoneState) {
	switch s {
	case model.StatePending:
		c.Pending++
	case model.StateOnTrack:
		c.OnTrack++
	case model.StateUpcoming:
		c.Upcoming++
	case model.StateOverdue:
		c.Overdue++
	}
}

// ProcessAlerts is one process row on the dashboard. Surfaced is the open
// milestone shown in list views (the most recently due); OpenCount and
// Counts expose the rest so a stuck earlier milestone stays visible.
type ProcessAlerts struct {
	ProcessID    int64             `json:"process_id"`
	ServiceType  model.ServiceType `json:"service_type"`
	ConsultantID int64             `json:"consultant_id"`
	Surfaced     OpenMilestone     `json:"surfaced"`
	OpenCount    int               `json:"open_count"`
	Counts       StateCounts       `json:"counts"`
}

// Dashboard aggregates open-milestone alerts for one consultant or all.
type Dashboard struct {
	AsOf          time.Time                         `json:"as_of"`
	Processes     []ProcessAlerts                   `json:"processes"`
	Totals        StateCounts                       `json:"totals"`
	ByServiceType map[model.ServiceType]StateCounts `json:"by_service_type"`
}

// AlertService classifies open milestones and builds dashboard
// aggregates. Read-only; state is always derived from the stored dates.
type AlertService struct {
	store  MilestoneStore
	cal    *calendar.Calendar
	logger *zap.Logger
}

func NewAlertService(store MilestoneStore, cal *calendar.Calendar, logger *zap.Logger) *AlertService {
	return &AlertService{
		store:  store,
		cal:    cal,
		logger: logger,
	}
}

// Classify derives the alert state of a milestone as of a given instant.
// Distances to the due date are working days, so a weekend between now
// and the deadline does not shrink the warning window. Zero-duration
// milestones must close within the session their date was recorded in, so
// once started they are overdue for any later instant.
func (s *AlertService) Classify(m *model.Milestone, asOf time.Time) model.MilestoneState {
	if m.CompletedAt != nil {
		return model.StateDone
	}
	if m.StartAt == nil {
		return model.StatePending
	}

	if m.ZeroDuration() {
		if asOf.After(*m.StartAt) {
			return model.StateOverdue
		}
		return model.StateUpcoming
	}

	due := calendar.DateOf(*m.StartAt)
	if m.DueOn != nil {
		due = calendar.DateOf(*m.DueOn)
	}

	if calendar.DateOf(asOf).After(due) {
		return model.StateOverdue
	}
	if s.cal.WorkingDaysBetween(asOf, due) <= m.WarningDays {
		return model.StateUpcoming
	}
	return model.StateOnTrack
}

// OpenMilestones returns every open milestone with its state, without the
// per-process collapsing applied to list views.
func (s *AlertService) OpenMilestones(ctx context.Context, consultantID *int64, asOf time.Time) ([]OpenMilestone, error) {
	start := time.Now()
	defer func() { metrics.RecordClassifyDuration(time.Since(start)) }()

	open, err := s.store.ListOpen(ctx, consultantID)
	if err != nil {
		s.logger.Error("Failed to list open milestones", zap.Error(err))
		return nil, err
	}

	out := make([]OpenMilestone, 0, len(open))
	for _, m := range open {
		out = append(out, OpenMilestone{
			MilestoneWithOwner: m,
			State:              s.Classify(&m.Milestone, asOf),
		})
	}
	return out, nil
}

// Dashboard aggregates open milestones per process for one consultant, or
// for everyone when consultantID is nil.
func (s *AlertService) Dashboard(ctx context.Context, consultantID *int64, asOf time.Time) (*Dashboard, error) {
	open, err := s.OpenMilestones(ctx, consultantID, asOf)
	if err != nil {
		return nil, err
	}

	byProcess := make(map[int64][]OpenMilestone)
	for _, m := range open {
		byProcess[m.ProcessID] = append(byProcess[m.ProcessID], m)
	}

	dash := &Dashboard{
		AsOf:          asOf,
		ByServiceType: make(map[model.ServiceType]StateCounts),
	}

	for _, group := range byProcess {
		p := ProcessAlerts{
			ProcessID:    group[0].ProcessID,
			ServiceType:  group[0].ServiceType,
			ConsultantID: group[0].ConsultantID,
			Surfaced:     surfaced(group),
			OpenCount:    len(group),
		}
		for _, m := range group {
			p.Counts.add(m.State)
			dash.Totals.add(m.State)

			svc := dash.ByServiceType[m.ServiceType]
			svc.add(m.State)
			dash.ByServiceType[m.ServiceType] = svc
		}
		dash.Processes = append(dash.Processes, p)
	}

	sort.Slice(dash.Processes, func(i, j int) bool {
		return dash.Processes[i].ProcessID < dash.Processes[j].ProcessID
	})

	return dash, nil
}

// surfaced picks the milestone shown for a process in list views: the
// started open milestone with the latest due date, falling back to the
// earliest pending one when nothing has started. One row per process
// keeps the feed free of duplicate notifications for the same process.
func surfaced(group []OpenMilestone) OpenMilestone {
	var best *OpenMilestone
	for i := range group {
		m := &group[i]
		if m.DueOn == nil {
			continue
		}
		if best == nil || m.DueOn.After(*best.DueOn) ||
			(m.DueOn.Equal(*best.DueOn) && m.Position > best.Position) {
			best = m
		}
	}
	if best != nil {
		return *best
	}

	first := group[0]
	for _, m := range group[1:] {
		if m.Position < first.Position {
			first = m
		}
	}
	return first
}
