package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recruitops/internal/calendar"
	"recruitops/internal/model"
	"recruitops/internal/service"
)

// stubStore serves a canned open-milestone list and records the filter it
// was asked for.
type stubStore struct {
	open       []model.MilestoneWithOwner
	consultant *int64
}

func (s *stubStore) InsertPlan(context.Context, []model.Milestone) (int, error) { return 0, nil }

func (s *stubStore) ListUnstartedByAnchor(context.Context, int64, model.AnchorEvent) ([]model.Milestone, error) {
	return nil, nil
}

func (s *stubStore) StartIfUnstarted(context.Context, int64, time.Time, time.Time) (bool, error) {
	return false, nil
}

func (s *stubStore) CompleteWhereTriggered(context.Context, int64, model.AnchorEvent, time.Time) (int, error) {
	return 0, nil
}

func (s *stubStore) ListByProcess(context.Context, int64) ([]model.Milestone, error) {
	return nil, nil
}

func (s *stubStore) ListOpen(_ context.Context, consultantID *int64) ([]model.MilestoneWithOwner, error) {
	s.consultant = consultantID
	return s.open, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

func testMux(store *stubStore) *http.ServeMux {
	cal := calendar.New(calendar.FixedHolidays{})
	alerts := service.NewAlertService(store, cal, zap.NewNop())
	mux := http.NewServeMux()
	NewAlertQueryHandler(alerts, zap.NewNop()).Register(mux)
	return mux
}

func openRow(processID int64, name string, startAt, dueOn time.Time) model.MilestoneWithOwner {
	return model.MilestoneWithOwner{
		Milestone: model.Milestone{
			ID:           processID * 10,
			ProcessID:    processID,
			TemplateName: name,
			Position:     1,
			ServiceType:  model.ServiceLongList,
			DurationDays: 10,
			WarningDays:  5,
			StartAt:      ptrTime(startAt),
			DueOn:        ptrTime(dueOn),
		},
		ConsultantID: 100,
	}
}

func TestGetDashboard(t *testing.T) {
	store := &stubStore{open: []model.MilestoneWithOwner{
		openRow(42, "Presentación de long list", date(2024, 2, 2), date(2024, 2, 16)),
	}}
	mux := testMux(store)

	req := httptest.NewRequest(http.MethodGet, "/alerts/dashboard?as_of=2024-02-20T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var dash service.Dashboard
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dash))
	require.Len(t, dash.Processes, 1)
	assert.Equal(t, int64(42), dash.Processes[0].ProcessID)
	assert.Equal(t, model.StateOverdue, dash.Processes[0].Surfaced.State)
	assert.Equal(t, 1, dash.Totals.Overdue)
	assert.Nil(t, store.consultant, "no consultant_id means the administrator view")
}

func TestGetOpenMilestones_ConsultantFilterForwarded(t *testing.T) {
	store := &stubStore{}
	mux := testMux(store)

	req := httptest.NewRequest(http.MethodGet, "/alerts/open?consultant_id=100", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.consultant)
	assert.Equal(t, int64(100), *store.consultant)
}

func TestAlertQueries_BadParams(t *testing.T) {
	mux := testMux(&stubStore{})

	for _, target := range []string{
		"/alerts/dashboard?consultant_id=abc",
		"/alerts/open?as_of=yesterday",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}
