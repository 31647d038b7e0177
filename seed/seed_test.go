package seed

import (
	"context"
	"path/filepath"
	"testing"

	"restaurant-api/config"
	"restaurant-api/models"
	"restaurant-api/services"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsIdempotent(t *testing.T) {
	log, _ := test.NewNullLogger()
	db, err := config.OpenDB("sqlite", filepath.Join(t.TempDir(), "seed.db"), log)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	svc := services.New(services.Deps{DB: db, Logger: log, AppDomain: "localhost:8081"})
	ctx := context.Background()

	require.NoError(t, Run(ctx, svc, log))
	require.NoError(t, Run(ctx, svc, log))

	users, err := svc.Users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 3)

	chef, err := svc.Users.Authenticate(ctx, "chef@restaurant.com", "chef1234")
	require.NoError(t, err)
	assert.Equal(t, models.RoleChef, chef.Role)

	items, err := svc.Menu.List(ctx, services.MenuFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Margherita Pizza", items[0].Name)

	tables, err := svc.Tables.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, tables, 5)
	assert.Contains(t, tables[0].QRCodeURL, "http://localhost:8081/table/Table%201?tableId=")

	settings, err := svc.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "QR Restaurant", settings.RestaurantName)
	assert.Equal(t, "#6200EE", settings.PrimaryColor)

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
