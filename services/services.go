// Package services holds the restaurant domain operations: order lifecycle,
// claims on orders and call requests, table occupancy and customer spend,
// plus the supporting menu, user and settings management.
package services

import (
	"context"
	"time"

	"restaurant-api/notifier"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Notifier notifier.Notifier
	Logger   logrus.FieldLogger
	// Clock defaults to time.Now
	Clock func() time.Time
	// StrictTransitions enforces the recommended order flow on status updates
	StrictTransitions bool
	// AppDomain is the fallback host for table locator URLs
	AppDomain string
}

type Services struct {
	Orders    *OrderService
	Claims    *ClaimCoordinator
	Calls     *CallRequestService
	Tables    *TableService
	Customers *CustomerService
	Menu      *MenuService
	Users     *UserService
	Settings  *SettingsService
}

func New(d Deps) *Services {
	b := newBase(d)
	settings := &SettingsService{base: b}
	tables := &TableService{base: b, settings: settings, appDomain: d.AppDomain}
	customers := &CustomerService{base: b}
	return &Services{
		Orders: &OrderService{
			base:      b,
			tables:    tables,
			customers: customers,
			strict:    d.StrictTransitions,
		},
		Claims:    &ClaimCoordinator{base: b},
		Calls:     &CallRequestService{base: b},
		Tables:    tables,
		Customers: customers,
		Menu:      &MenuService{base: b},
		Users:     &UserService{base: b},
		Settings:  settings,
	}
}

type base struct {
	db       *gorm.DB
	notifier notifier.Notifier
	log      logrus.FieldLogger
	clock    func() time.Time
}

func newBase(d Deps) base {
	b := base{db: d.DB, notifier: d.Notifier, log: d.Logger, clock: d.Clock}
	if b.notifier == nil {
		b.notifier = notifier.Discard{}
	}
	if b.log == nil {
		b.log = logrus.StandardLogger()
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	return b
}

func (b base) now() time.Time {
	return b.clock().UTC()
}

// publish broadcasts an event. The triggering operation already committed,
// so a failed broadcast is only logged.
func (b base) publish(ctx context.Context, name string, payload interface{}) {
	ev := notifier.Event{Name: name, Payload: payload, At: b.now()}
	if err := b.notifier.Publish(ctx, ev); err != nil {
		b.log.WithError(err).WithField("event", name).Warn("event broadcast failed")
	}
}

// Ping checks the database connection
func (s *Services) Ping(ctx context.Context) error {
	sqlDB, err := s.Orders.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
