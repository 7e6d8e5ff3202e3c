package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recruitops/internal/calendar"
	"recruitops/internal/catalog"
	"recruitops/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCalendar(holidays ...time.Time) *calendar.Calendar {
	return calendar.New(calendar.FixedHolidays(calendar.NewHolidaySet(holidays...)))
}

func TestBuildPlan_OneMilestonePerTemplate(t *testing.T) {
	ctx := context.Background()

	for _, code := range catalog.KnownServiceTypes() {
		store := newMemStore()
		builder := NewPlanBuilder(store, testCalendar(), zap.NewNop())

		plan, err := builder.BuildPlan(ctx, 7, code, date(2024, 2, 1))
		require.NoError(t, err)

		templates := catalog.TemplatesFor(code)
		require.Len(t, plan, len(templates), "service type %s", code)

		stored, err := store.ListByProcess(ctx, 7)
		require.NoError(t, err)
		require.Len(t, stored, len(templates), "service type %s", code)
		for i, m := range stored {
			assert.Equal(t, templates[i].Name, m.TemplateName)
			assert.Equal(t, templates[i].Position, m.Position)
			assert.Equal(t, code, m.ServiceType)
		}
	}
}

func TestBuildPlan_OnlyProcessStartMilestoneHasDates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	builder := NewPlanBuilder(store, testCalendar(), zap.NewNop())

	_, err := builder.BuildPlan(ctx, 1, model.ServiceFullCycle, date(2024, 2, 1))
	require.NoError(t, err)

	stored, err := store.ListByProcess(ctx, 1)
	require.NoError(t, err)

	for _, m := range stored {
		if m.AnchorEvent == model.AnchorProcessStart {
			assert.NotNil(t, m.StartAt, "%s should start at plan time", m.TemplateName)
			assert.NotNil(t, m.DueOn, "%s should have a due date", m.TemplateName)
		} else {
			assert.Nil(t, m.StartAt, "%s must wait for its anchor event", m.TemplateName)
			assert.Nil(t, m.DueOn, "%s must have no due date yet", m.TemplateName)
			assert.Nil(t, m.CompletedAt)
		}
	}
}

func TestBuildPlan_LongListScenario(t *testing.T) {
	// Process starting Thursday 2024-02-01: the zero-duration publish
	// milestone is due the same day it starts.
	ctx := context.Background()
	store := newMemStore()
	builder := NewPlanBuilder(store, testCalendar(), zap.NewNop())

	_, err := builder.BuildPlan(ctx, 42, model.ServiceLongList, date(2024, 2, 1))
	require.NoError(t, err)

	stored, err := store.ListByProcess(ctx, 42)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	publish := stored[0]
	require.NotNil(t, publish.StartAt)
	require.NotNil(t, publish.DueOn)
	assert.Equal(t, date(2024, 2, 1), *publish.StartAt)
	assert.Equal(t, date(2024, 2, 1), *publish.DueOn)

	present := stored[1]
	assert.Nil(t, present.StartAt)
	assert.Nil(t, present.DueOn)
}

func TestBuildPlan_RepeatCallIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	builder := NewPlanBuilder(store, testCalendar(), zap.NewNop())

	_, err := builder.BuildPlan(ctx, 9, model.ServiceTargeted, date(2024, 2, 1))
	require.NoError(t, err)

	before, err := store.ListByProcess(ctx, 9)
	require.NoError(t, err)

	_, err = builder.BuildPlan(ctx, 9, model.ServiceTargeted, date(2024, 2, 1))
	require.NoError(t, err)

	after, err := store.ListByProcess(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, before, after, "repeat build must not change the plan")
}

func TestBuildPlan_UnknownServiceTypeYieldsEmptyPlan(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	builder := NewPlanBuilder(store, testCalendar(), zap.NewNop())

	plan, err := builder.BuildPlan(ctx, 5, model.ServiceType("outplacement"), date(2024, 2, 1))
	require.NoError(t, err, "unknown service type is a warning, not an error")
	assert.Empty(t, plan)

	stored, err := store.ListByProcess(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBuildPlan_StartDateNormalizedToDate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	builder := NewPlanBuilder(store, testCalendar(), zap.NewNop())

	_, err := builder.BuildPlan(ctx, 3, model.ServiceLongList,
		time.Date(2024, 2, 1, 16, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	stored, err := store.ListByProcess(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, stored[0].StartAt)
	assert.Equal(t, date(2024, 2, 1), *stored[0].StartAt)
}
