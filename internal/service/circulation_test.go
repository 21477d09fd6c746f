package service_test

import (
	"context"
	"testing"

	"maint-logbook/internal/database/dbtest"
	"maint-logbook/internal/models"
	"maint-logbook/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type circulationFixture struct {
	db        *gorm.DB
	logs      *service.DailyLogService
	circ      *service.CirculationService
	author    models.User
	approvers []models.User
	route     *models.CirculationRoute
}

func newCirculationFixture(t *testing.T) *circulationFixture {
	t.Helper()
	db := dbtest.New(t)
	f := &circulationFixture{
		db:     db,
		logs:   service.NewDailyLogService(db),
		circ:   service.NewCirculationService(db),
		author: dbtest.User(t, db, "author@maint.local", "Author"),
		approvers: []models.User{
			dbtest.User(t, db, "chief@maint.local", "Chief"),
			dbtest.User(t, db, "manager@maint.local", "Manager"),
		},
	}
	route, err := f.circ.CreateRoute(context.Background(), service.Actor{UserID: f.author.ID}, service.RouteInput{
		Name:    "Standard",
		UserIDs: []uint{f.approvers[0].ID, f.approvers[1].ID},
	})
	require.NoError(t, err)
	f.route = route

	p := project(t, db, "Boiler overhaul", models.ConstructionOngoing)
	_, err = f.logs.Create(context.Background(), service.Actor{UserID: f.author.ID}, "2024-06-01",
		service.DailyLogInput{Entries: entries(p.ID)})
	require.NoError(t, err)
	return f
}

func (f *circulationFixture) status(t *testing.T) models.DailyLogStatus {
	t.Helper()
	view, err := f.logs.Get(context.Background(), "2024-06-01")
	require.NoError(t, err)
	require.True(t, view.Exists)
	return view.DailyLog.Status
}

func TestCreateRouteKeepsCallerOrder(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewCirculationService(db)
	a := dbtest.User(t, db, "a@maint.local", "A")
	b := dbtest.User(t, db, "b@maint.local", "B")

	route, err := svc.CreateRoute(context.Background(), service.Actor{UserID: a.ID}, service.RouteInput{
		Name:    "  Night shift ",
		UserIDs: []uint{b.ID, a.ID, b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Night shift", route.Name)
	require.Len(t, route.Members, 3)
	for i, m := range route.Members {
		assert.Equal(t, i+1, m.Position)
	}
	assert.Equal(t, []uint{b.ID, a.ID, b.ID}, []uint{route.Members[0].UserID, route.Members[1].UserID, route.Members[2].UserID})
	require.NotNil(t, route.Members[0].User)
	assert.Equal(t, "B", route.Members[0].User.FullName)
}

func TestCreateRouteValidation(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewCirculationService(db)
	a := dbtest.User(t, db, "a@maint.local", "A")
	ctx := context.Background()

	_, err := svc.CreateRoute(ctx, service.Actor{UserID: a.ID}, service.RouteInput{Name: " "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.CreateRoute(ctx, service.Actor{UserID: a.ID}, service.RouteInput{Name: "X", UserIDs: []uint{a.ID, 999}})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.CreateRoute(ctx, service.Actor{UserID: 999}, service.RouteInput{Name: "X"})
	assert.ErrorIs(t, err, service.ErrNotFound)

	empty, err := svc.CreateRoute(ctx, service.Actor{UserID: a.ID}, service.RouteInput{Name: "Empty"})
	require.NoError(t, err)
	assert.Empty(t, empty.Members)
}

func TestListRoutesNewestFirst(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewCirculationService(db)
	a := dbtest.User(t, db, "a@maint.local", "A")
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		_, err := svc.CreateRoute(ctx, service.Actor{UserID: a.ID}, service.RouteInput{Name: name, UserIDs: []uint{a.ID}})
		require.NoError(t, err)
	}

	routes, err := svc.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "second", routes[0].Name)
	assert.Equal(t, "first", routes[1].Name)
	require.NotNil(t, routes[0].CreatedBy)
}

func TestStartCirculationOpensPendingPerMember(t *testing.T) {
	f := newCirculationFixture(t)

	circs, err := f.circ.StartCirculation(context.Background(), service.Actor{UserID: f.author.ID}, "2024-06-01", f.route.ID)
	require.NoError(t, err)
	require.Len(t, circs, 2)
	for i, c := range circs {
		assert.Equal(t, models.CirculationPending, c.Status)
		assert.Equal(t, f.approvers[i].ID, c.ApproverID)
		assert.Equal(t, f.author.ID, c.CreatedByID)
		require.NotNil(t, c.Approver)
	}
	assert.Equal(t, models.DailyLogInReview, f.status(t))
}

func TestStartCirculationTwiceIsNotFound(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	actor := service.Actor{UserID: f.author.ID}

	_, err := f.circ.StartCirculation(ctx, actor, "2024-06-01", f.route.ID)
	require.NoError(t, err)
	_, err = f.circ.StartCirculation(ctx, actor, "2024-06-01", f.route.ID)
	assert.ErrorIs(t, err, service.ErrDailyLogNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.Circulation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestStartCirculationEmptyRouteKeepsDraft(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	actor := service.Actor{UserID: f.author.ID}

	empty, err := f.circ.CreateRoute(ctx, actor, service.RouteInput{Name: "Empty"})
	require.NoError(t, err)

	_, err = f.circ.StartCirculation(ctx, actor, "2024-06-01", empty.ID)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.EqualError(t, err, "no members configured for this circulation route")
	assert.Equal(t, models.DailyLogDraft, f.status(t))
}

func TestStartCirculationRequiresOwnDraft(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()

	_, err := f.circ.StartCirculation(ctx, service.Actor{UserID: f.approvers[0].ID}, "2024-06-01", f.route.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.circ.StartCirculation(ctx, service.Actor{UserID: f.author.ID}, "2024-06-02", f.route.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDecideApprovesLogAfterLastApproval(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	_, err := f.circ.StartCirculation(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", f.route.ID)
	require.NoError(t, err)

	c, err := f.circ.Decide(ctx, service.Actor{UserID: f.approvers[0].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationApproved, Comment: " ok "})
	require.NoError(t, err)
	assert.Equal(t, models.CirculationApproved, c.Status)
	assert.Equal(t, "ok", c.Comment)
	assert.NotNil(t, c.DecidedAt)
	assert.Equal(t, models.DailyLogInReview, f.status(t))

	_, err = f.circ.Decide(ctx, service.Actor{UserID: f.approvers[1].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationApproved})
	require.NoError(t, err)
	assert.Equal(t, models.DailyLogApproved, f.status(t))

	_, err = f.logs.Update(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", service.DailyLogInput{})
	assert.ErrorIs(t, err, service.ErrLogNotEditable)
}

func TestDecideOutOfRouteOrder(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	_, err := f.circ.StartCirculation(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", f.route.ID)
	require.NoError(t, err)

	_, err = f.circ.Decide(ctx, service.Actor{UserID: f.approvers[1].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationApproved})
	require.NoError(t, err)
	assert.Equal(t, models.DailyLogInReview, f.status(t))
}

func TestDecideRejectionKeepsLogInReview(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	_, err := f.circ.StartCirculation(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", f.route.ID)
	require.NoError(t, err)

	c, err := f.circ.Decide(ctx, service.Actor{UserID: f.approvers[0].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationRejected, Comment: "missing readings"})
	require.NoError(t, err)
	assert.Equal(t, models.CirculationRejected, c.Status)

	_, err = f.circ.Decide(ctx, service.Actor{UserID: f.approvers[1].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationApproved})
	require.NoError(t, err)
	assert.Equal(t, models.DailyLogInReview, f.status(t), "a rejection blocks approval")
}

func TestDecideApprovalAfterRejectionKeepsLogInReview(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	_, err := f.circ.StartCirculation(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", f.route.ID)
	require.NoError(t, err)

	_, err = f.circ.Decide(ctx, service.Actor{UserID: f.approvers[1].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationApproved})
	require.NoError(t, err)
	_, err = f.circ.Decide(ctx, service.Actor{UserID: f.approvers[0].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationRejected})
	require.NoError(t, err)
	assert.Equal(t, models.DailyLogInReview, f.status(t))

	var pending int64
	require.NoError(t, f.db.Model(&models.Circulation{}).
		Where("status = ?", models.CirculationPending).Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestStartCirculationAndUpdatePickTheSameLog(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	actor := service.Actor{UserID: f.author.ID}

	_, err := f.circ.StartCirculation(ctx, actor, "2024-06-01", f.route.ID)
	require.NoError(t, err)
	second, err := f.logs.Create(ctx, actor, "2024-06-01", service.DailyLogInput{IsHoliday: true})
	require.NoError(t, err)

	// the caller's earliest log for the date is already in review
	_, err = f.logs.Update(ctx, actor, "2024-06-01", service.DailyLogInput{})
	assert.ErrorIs(t, err, service.ErrLogNotEditable)
	_, err = f.circ.StartCirculation(ctx, actor, "2024-06-01", f.route.ID)
	assert.ErrorIs(t, err, service.ErrDailyLogNotFound)

	var log models.DailyLog
	require.NoError(t, f.db.First(&log, second.ID).Error)
	assert.Equal(t, models.DailyLogDraft, log.Status)
}

func TestDecideWithoutPendingCirculation(t *testing.T) {
	f := newCirculationFixture(t)
	ctx := context.Background()
	approver := service.Actor{UserID: f.approvers[0].ID}

	_, err := f.circ.Decide(ctx, approver, "2024-06-01", service.DecisionInput{Status: models.CirculationApproved})
	assert.ErrorIs(t, err, service.ErrNoPendingCirculation)

	_, err = f.circ.StartCirculation(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", f.route.ID)
	require.NoError(t, err)
	_, err = f.circ.Decide(ctx, approver, "2024-06-01", service.DecisionInput{Status: models.CirculationApproved})
	require.NoError(t, err)

	_, err = f.circ.Decide(ctx, approver, "2024-06-01", service.DecisionInput{Status: models.CirculationRejected})
	assert.ErrorIs(t, err, service.ErrNotFound, "a decision is final")

	_, err = f.circ.Decide(ctx, service.Actor{UserID: f.author.ID}, "2024-06-01", service.DecisionInput{Status: models.CirculationApproved})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDecideRejectsUnknownStatus(t *testing.T) {
	f := newCirculationFixture(t)
	_, err := f.circ.Decide(context.Background(), service.Actor{UserID: f.approvers[0].ID}, "2024-06-01",
		service.DecisionInput{Status: models.CirculationPending})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
