package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"maint-logbook/internal/database/dbtest"
	"maint-logbook/internal/models"
	"maint-logbook/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func project(t *testing.T, db *gorm.DB, title string, status models.ConstructionStatus) models.ConstructionProject {
	t.Helper()
	p := models.ConstructionProject{
		Title:      title,
		FiscalYear: 2024,
		Status:     status,
		StartDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func entries(projectID uint) []service.EntryInput {
	return []service.EntryInput{
		{ConstructionProjectID: projectID, WorkStatus: models.WorkInProgress, WorkDescription: "replaced filters", NextWorkPlan: "check pump"},
		{ConstructionProjectID: projectID, WorkStatus: models.WorkCompleted, WorkDescription: "painted rails", NextWorkPlan: "ignored"},
	}
}

func TestDailyLogGetWithoutLogListsOngoingProjects(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	ongoing := project(t, db, "Boiler overhaul", models.ConstructionOngoing)
	project(t, db, "Roof repair", models.ConstructionCompleted)

	view, err := svc.Get(context.Background(), "2024-06-01")
	require.NoError(t, err)
	assert.False(t, view.Exists)
	assert.Nil(t, view.DailyLog)
	require.Len(t, view.OngoingProjects, 1)
	assert.Equal(t, ongoing.ID, view.OngoingProjects[0].ID)
	assert.Equal(t, "Boiler overhaul", view.OngoingProjects[0].Title)
}

func TestDailyLogGetWithoutOngoingProjectsReturnsEmptyList(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	project(t, db, "Roof repair", models.ConstructionCompleted)

	view, err := svc.Get(context.Background(), "2024-06-01")
	require.NoError(t, err)
	assert.NotNil(t, view.OngoingProjects)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":false,"ongoingProjects":[]}`, string(data))
}

func TestDailyLogGetIsStableWithoutWrites(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	_, err := f.circ.StartCirculation(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", f.route.ID)
	require.NoError(t, err)
	_, err = f.circ.Decide(ctx, service.Actor{UserID: f.approvers[0].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationApproved, Comment: "ok"})
	require.NoError(t, err)

	first, err := f.logs.Get(ctx, "2024-06-01")
	require.NoError(t, err)
	second, err := f.logs.Get(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, first.DailyLog.Circulations, 2)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestDailyLogGetRejectsBadDate(t *testing.T) {
	svc := service.NewDailyLogService(dbtest.New(t))
	_, err := svc.Get(context.Background(), "June first")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestDailyLogCreateStartsAsDraft(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	u := dbtest.User(t, db, "alice@maint.local", "Alice")
	p := project(t, db, "Boiler overhaul", models.ConstructionOngoing)
	ctx := context.Background()

	log, err := svc.Create(ctx, service.Actor{UserID: u.ID}, "2024-06-01", service.DailyLogInput{
		NextWorkDate: "2024-06-03",
		Entries:      entries(p.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DailyLogDraft, log.Status)
	assert.Equal(t, u.ID, log.CreatedByID)
	require.NotNil(t, log.NextWorkDate)
	assert.Equal(t, "2024-06-03", log.NextWorkDate.UTC().Format(service.DateLayout))
	require.Len(t, log.Entries, 2)
	assert.Equal(t, "check pump", log.Entries[0].NextWorkPlan)
	assert.Empty(t, log.Entries[1].NextWorkPlan, "completed entries drop the plan")
	require.NotNil(t, log.Entries[0].ConstructionProject)
	assert.Equal(t, "Boiler overhaul", log.Entries[0].ConstructionProject.Title)

	view, err := svc.Get(ctx, "2024-06-01T09:30:00Z")
	require.NoError(t, err)
	require.True(t, view.Exists)
	assert.Equal(t, log.ID, view.DailyLog.ID)
	require.NotNil(t, view.DailyLog.CreatedBy)
	assert.Equal(t, "Alice", view.DailyLog.CreatedBy.FullName)
}

func TestDailyLogCreateValidatesEntries(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	u := dbtest.User(t, db, "alice@maint.local", "Alice")
	p := project(t, db, "Boiler overhaul", models.ConstructionOngoing)
	actor := service.Actor{UserID: u.ID}

	tests := []struct {
		name  string
		entry service.EntryInput
	}{
		{"in progress without plan", service.EntryInput{ConstructionProjectID: p.ID, WorkStatus: models.WorkInProgress, NextWorkPlan: "  "}},
		{"unknown work status", service.EntryInput{ConstructionProjectID: p.ID, WorkStatus: "PAUSED"}},
		{"missing project", service.EntryInput{WorkStatus: models.WorkCompleted}},
		{"unknown project", service.EntryInput{ConstructionProjectID: p.ID + 100, WorkStatus: models.WorkCompleted}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), actor, "2024-06-01", service.DailyLogInput{
				Entries: []service.EntryInput{tt.entry},
			})
			assert.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.DailyLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDailyLogCreateUnknownUser(t *testing.T) {
	svc := service.NewDailyLogService(dbtest.New(t))
	_, err := svc.Create(context.Background(), service.Actor{UserID: 42}, "2024-06-01", service.DailyLogInput{})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.EqualError(t, err, "user not found")
}

func TestDailyLogTwoLogsOnOneDate(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	alice := dbtest.User(t, db, "alice@maint.local", "Alice")
	bob := dbtest.User(t, db, "bob@maint.local", "Bob")
	ctx := context.Background()

	first, err := svc.Create(ctx, service.Actor{UserID: alice.ID}, "2024-06-01", service.DailyLogInput{})
	require.NoError(t, err)
	_, err = svc.Create(ctx, service.Actor{UserID: bob.ID}, "2024-06-01", service.DailyLogInput{IsHoliday: true})
	require.NoError(t, err)

	view, err := svc.Get(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, first.ID, view.DailyLog.ID)

	logs, err := svc.ListMonth(ctx, "2024-06")
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestDailyLogUpdateReplacesEntries(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	u := dbtest.User(t, db, "alice@maint.local", "Alice")
	p := project(t, db, "Boiler overhaul", models.ConstructionOngoing)
	q := project(t, db, "Chiller swap", models.ConstructionOngoing)
	actor := service.Actor{UserID: u.ID}
	ctx := context.Background()

	_, err := svc.Create(ctx, actor, "2024-06-01", service.DailyLogInput{NextWorkDate: "2024-06-03", Entries: entries(p.ID)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, actor, "2024-06-01", service.DailyLogInput{
		IsHoliday: true,
		Entries: []service.EntryInput{
			{ConstructionProjectID: q.ID, WorkStatus: models.WorkCompleted, WorkDescription: "commissioned"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.DailyLogDraft, updated.Status)
	assert.True(t, updated.IsHoliday)
	assert.Nil(t, updated.NextWorkDate)
	require.Len(t, updated.Entries, 1)
	assert.Equal(t, q.ID, updated.Entries[0].ConstructionProjectID)

	var count int64
	require.NoError(t, db.Model(&models.DailyLogEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDailyLogUpdateOnlyOwnLog(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	alice := dbtest.User(t, db, "alice@maint.local", "Alice")
	bob := dbtest.User(t, db, "bob@maint.local", "Bob")
	ctx := context.Background()

	_, err := svc.Create(ctx, service.Actor{UserID: alice.ID}, "2024-06-01", service.DailyLogInput{})
	require.NoError(t, err)

	_, err = svc.Update(ctx, service.Actor{UserID: bob.ID}, "2024-06-01", service.DailyLogInput{IsHoliday: true})
	assert.ErrorIs(t, err, service.ErrDailyLogNotFound)
}

func TestDailyLogUpdateRejectedOutsideDraft(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	u := dbtest.User(t, db, "alice@maint.local", "Alice")
	p := project(t, db, "Boiler overhaul", models.ConstructionOngoing)
	actor := service.Actor{UserID: u.ID}
	ctx := context.Background()

	log, err := svc.Create(ctx, actor, "2024-06-01", service.DailyLogInput{Entries: entries(p.ID)})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.DailyLog{}).Where("id = ?", log.ID).
		Update("status", models.DailyLogInReview).Error)

	_, err = svc.Update(ctx, actor, "2024-06-01", service.DailyLogInput{})
	assert.ErrorIs(t, err, service.ErrInvalidState)
	assert.EqualError(t, err, "this log cannot be edited")

	var count int64
	require.NoError(t, db.Model(&models.DailyLogEntry{}).Where("daily_log_id = ?", log.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count, "entries stay untouched")
}

func TestDailyLogListMonth(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewDailyLogService(db)
	u := dbtest.User(t, db, "alice@maint.local", "Alice")
	actor := service.Actor{UserID: u.ID}
	ctx := context.Background()

	for _, d := range []string{"2024-06-30", "2024-05-31", "2024-06-01", "2024-07-01"} {
		_, err := svc.Create(ctx, actor, d, service.DailyLogInput{})
		require.NoError(t, err)
	}

	logs, err := svc.ListMonth(ctx, "2024-06")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-06-01", logs[0].Date.UTC().Format(service.DateLayout))
	assert.Equal(t, "2024-06-30", logs[1].Date.UTC().Format(service.DateLayout))
	require.NotNil(t, logs[0].CreatedBy)

	_, err = svc.ListMonth(ctx, "2024-13")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
