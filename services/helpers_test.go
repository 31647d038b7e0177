package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"restaurant-api/config"
	"restaurant-api/models"
	"restaurant-api/notifier"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (r *recordingNotifier) Publish(_ context.Context, e notifier.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func (r *recordingNotifier) last() notifier.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// stepClock advances one second on every reading
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	db    *gorm.DB
	svc   *Services
	rec   *recordingNotifier
	clock *stepClock
	logs  *test.Hook
}

func setup(t *testing.T) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	db, err := config.OpenDB("sqlite", filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	rec := &recordingNotifier{}
	clock := &stepClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := New(Deps{
		DB:        db,
		Notifier:  rec,
		Logger:    log,
		Clock:     clock.Now,
		AppDomain: "menu.example.com",
	})
	return &fixture{db: db, svc: svc, rec: rec, clock: clock, logs: hook}
}

func (f *fixture) table(t *testing.T, name string) *models.Table {
	t.Helper()
	table, err := f.svc.Tables.Create(context.Background(), CreateTableInput{Name: name})
	require.NoError(t, err)
	return table
}

func (f *fixture) menuItem(t *testing.T, name, price string) *models.MenuItem {
	t.Helper()
	item, err := f.svc.Menu.Create(context.Background(), MenuItemInput{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "Pizza",
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) order(t *testing.T, table *models.Table, email *string, total string) *models.Order {
	t.Helper()
	item := f.menuItem(t, "Margherita "+table.Name, total)
	order, err := f.svc.Orders.Submit(context.Background(), SubmitOrderInput{
		TableID:       table.ID,
		CustomerName:  "Ann",
		CustomerEmail: email,
		Items: []OrderItemInput{{
			MenuItemID:   item.ID,
			MenuItemName: item.Name,
			Quantity:     1,
			BasePrice:    item.Price,
			ItemTotal:    item.Price,
		}},
		TotalAmount: decimal.RequireFromString(total),
	})
	require.NoError(t, err)
	return order
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}

func fieldsOf(err error) map[string]string {
	if e, ok := AsError(err); ok {
		return e.Fields
	}
	return nil
}
