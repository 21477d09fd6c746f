package service_test

import (
	"context"
	"testing"

	"maint-logbook/internal/database/dbtest"
	"maint-logbook/internal/models"
	"maint-logbook/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateUpdateReplacesItems(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewTemplateService(db)
	u := dbtest.User(t, db, "qa@maint.local", "QA")
	actor := service.Actor{UserID: u.ID}
	ctx := context.Background()

	tmpl, err := svc.Create(ctx, actor, service.TemplateInput{
		Name: "Chiller monthly",
		Items: []service.ItemInput{
			{ItemName: "Supply temp", MeasurementFields: []service.FieldInput{{Name: "Temp", Type: models.MeasurementTemperature, Unit: "C"}}},
			{ItemName: "Visual check", Required: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, tmpl.Items, 2)
	assert.Equal(t, 1, tmpl.Items[0].Position)
	assert.Equal(t, 2, tmpl.Items[1].Position)

	updated, err := svc.Update(ctx, actor, tmpl.ID, service.TemplateInput{
		Name:  "Chiller quarterly",
		Items: []service.ItemInput{{ItemName: "Current", MeasurementFields: []service.FieldInput{{Name: "Amps", Type: models.MeasurementCurrent}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Chiller quarterly", updated.Name)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Current", updated.Items[0].ItemName)

	var fields int64
	require.NoError(t, db.Model(&models.MeasurementField{}).Count(&fields).Error)
	assert.Equal(t, int64(1), fields, "old fields removed")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, actor, tmpl.ID))
	_, err = svc.Get(ctx, tmpl.ID)
	assert.ErrorIs(t, err, service.ErrTemplateNotFound)
}

func TestTemplateValidation(t *testing.T) {
	db := dbtest.New(t)
	svc := service.NewTemplateService(db)
	u := dbtest.User(t, db, "qa@maint.local", "QA")
	actor := service.Actor{UserID: u.ID}
	ctx := context.Background()

	lo, hi := 10.0, 5.0
	cases := []service.TemplateInput{
		{Name: " "},
		{Name: "T", Items: []service.ItemInput{{ItemName: ""}}},
		{Name: "T", Items: []service.ItemInput{{ItemName: "I", MeasurementFields: []service.FieldInput{{Name: "F", Type: "WEIGHT"}}}}},
		{Name: "T", Items: []service.ItemInput{{ItemName: "I", MeasurementFields: []service.FieldInput{{Name: "F", Type: models.MeasurementNumber, MinValue: &lo, MaxValue: &hi}}}}},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, actor, in)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	}
}

func TestAuditRecordsMutations(t *testing.T) {
	db := dbtest.New(t)
	u := dbtest.User(t, db, "qa@maint.local", "QA")
	actor := service.Actor{UserID: u.ID}
	ctx := context.Background()

	_, err := service.NewTemplateService(db).Create(ctx, actor, service.TemplateInput{Name: "T"})
	require.NoError(t, err)
	_, err = service.NewDailyLogService(db).Create(ctx, actor, "2024-06-01", service.DailyLogInput{})
	require.NoError(t, err)

	audit := service.NewAuditService(db)
	all, err := audit.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "daily_log", all[0].Entity, "newest first")
	require.NotNil(t, all[0].User)

	logs, err := audit.List(ctx, "inspection_template")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "create", logs[0].Action)
}
