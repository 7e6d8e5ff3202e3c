package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recruitops/internal/model"
)

type stubSource struct {
	holidays []model.Holiday
	err      error
}

func (s *stubSource) ListAll(_ context.Context) ([]model.Holiday, error) {
	return s.holidays, s.err
}

func TestDirectory_EmptyBeforeFirstLoad(t *testing.T) {
	d := NewDirectory(&stubSource{}, zap.NewNop())

	cal := New(d)
	// Weekends-only until something loads.
	assert.True(t, cal.IsWorkingDay(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
}

func TestDirectory_RefreshSwapsSnapshot(t *testing.T) {
	src := &stubSource{holidays: []model.Holiday{
		{Day: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), Name: "Feriado"},
	}}
	d := NewDirectory(src, zap.NewNop())

	require.NoError(t, d.Refresh(context.Background()))

	cal := New(d)
	assert.False(t, cal.IsWorkingDay(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cal.IsWorkingDay(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)))
}

func TestDirectory_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	src := &stubSource{holidays: []model.Holiday{
		{Day: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
	}}
	d := NewDirectory(src, zap.NewNop())
	require.NoError(t, d.Refresh(context.Background()))

	src.err = errors.New("connection refused")
	require.Error(t, d.Refresh(context.Background()))

	// The holiday loaded before the failure is still served.
	assert.True(t, d.Holidays().Contains(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
}
