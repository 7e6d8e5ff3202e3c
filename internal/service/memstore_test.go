package service

import (
	"context"
	"sync"
	"time"

	"recruitops/internal/model"
)

// memStore implements MilestoneStore and ProcessStore in memory with the
// same conditional-write semantics as the SQL repository: the null checks
// happen under one lock, so concurrent test callers race the way rows do.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	milestones []model.Milestone
	processes  map[int64]model.ProcessMeta
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    1,
		processes: make(map[int64]model.ProcessMeta),
	}
}

func (s *memStore) addProcess(p model.ProcessMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes[p.ID] = p
}

func (s *memStore) InsertPlan(_ context.Context, milestones []model.Milestone) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, m := range milestones {
		if s.findLocked(m.ProcessID, m.TemplateName) != nil {
			continue
		}
		m.ID = s.nextID
		s.nextID++
		m.CreatedAt = time.Now()
		s.milestones = append(s.milestones, m)
		inserted++
	}
	return inserted, nil
}

func (s *memStore) findLocked(processID int64, templateName string) *model.Milestone {
	for i := range s.milestones {
		if s.milestones[i].ProcessID == processID && s.milestones[i].TemplateName == templateName {
			return &s.milestones[i]
		}
	}
	return nil
}

func (s *memStore) ListUnstartedByAnchor(_ context.Context, processID int64, event model.AnchorEvent) ([]model.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Milestone
	for _, m := range s.milestones {
		if m.ProcessID == processID && m.AnchorEvent == event && m.StartAt == nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) StartIfUnstarted(_ context.Context, id int64, startAt time.Time, dueOn time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.milestones {
		m := &s.milestones[i]
		if m.ID == id && m.StartAt == nil {
			at, due := startAt, dueOn
			m.StartAt = &at
			m.DueOn = &due
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CompleteWhereTriggered(_ context.Context, processID int64, event model.AnchorEvent, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for i := range s.milestones {
		m := &s.milestones[i]
		if m.ProcessID == processID && m.CompletionEvent == event && m.CompletedAt == nil {
			done := at
			m.CompletedAt = &done
			completed++
		}
	}
	return completed, nil
}

func (s *memStore) ListByProcess(_ context.Context, processID int64) ([]model.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Milestone
	for _, m := range s.milestones {
		if m.ProcessID == processID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) ListOpen(_ context.Context, consultantID *int64) ([]model.MilestoneWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.MilestoneWithOwner
	for _, m := range s.milestones {
		if m.CompletedAt != nil {
			continue
		}
		p, ok := s.processes[m.ProcessID]
		if !ok {
			continue
		}
		if consultantID != nil && p.ConsultantID != *consultantID {
			continue
		}
		out = append(out, model.MilestoneWithOwner{Milestone: m, ConsultantID: p.ConsultantID})
	}
	return out, nil
}

func (s *memStore) FindMeta(_ context.Context, id int64) (*model.ProcessMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.processes[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
