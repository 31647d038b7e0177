package services

import (
	"context"
	"strings"
	"time"

	"restaurant-api/models"
	"restaurant-api/notifier"
	"restaurant-api/statemachine"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderItemInput struct {
	MenuItemID     string                    `json:"menuItemId" validate:"required,uuid"`
	MenuItemName   string                    `json:"menuItemName" validate:"max=200"`
	Quantity       int                       `json:"quantity" validate:"gt=0"`
	BasePrice      decimal.Decimal           `json:"basePrice" validate:"gte=0"`
	Customizations models.ItemCustomizations `json:"customizations"`
	CustomerNotes  *string                   `json:"customerNotes" validate:"omitempty,max=500"`
	ItemTotal      decimal.Decimal           `json:"itemTotal" validate:"gte=0"`
}

type SubmitOrderInput struct {
	TableID       string             `json:"tableId" validate:"required,uuid"`
	TableName     string             `json:"tableName" validate:"max=50"`
	CustomerName  string             `json:"customerName" validate:"required,min=1,max=100"`
	CustomerEmail *string            `json:"customerEmail" validate:"omitempty,email"`
	Items         []OrderItemInput   `json:"items" validate:"required,min=1,dive"`
	TotalAmount   decimal.Decimal    `json:"totalAmount" validate:"gte=0"`
	OrderSource   models.OrderSource `json:"orderSource" validate:"omitempty,oneof=customer manual"`
}

type AddItemsInput struct {
	Items            []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	AdditionalAmount decimal.Decimal  `json:"additionalAmount" validate:"gte=0"`
}

type OrderFilter struct {
	Statuses []models.OrderStatus
	TableID  string
}

// OrderService governs order submission and status progression
type OrderService struct {
	base
	tables    *TableService
	customers *CustomerService
	strict    bool
}

// Strict reports whether status changes must follow the recommended flow
func (s *OrderService) Strict() bool { return s.strict }

// Submit creates a pending order and seats the customer at the table in a
// single transaction. Either both writes land or neither does.
func (s *OrderService) Submit(ctx context.Context, in SubmitOrderInput) (*models.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = normalizeEmailPtr(in.CustomerEmail)
	if err := check(in); err != nil {
		return nil, err
	}
	if in.OrderSource == "" {
		in.OrderSource = models.SourceCustomer
	}

	now := s.now()
	order := &models.Order{
		TableID:       in.TableID,
		TableName:     strings.TrimSpace(in.TableName),
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Status:        models.StatusPending,
		TotalAmount:   in.TotalAmount,
		OrderSource:   in.OrderSource,
		Items:         buildItems(in.Items, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureMenuItems(tx, in.Items); err != nil {
			return err
		}

		if order.CustomerEmail != nil {
			var customer models.Customer
			err := tx.Where("email = ?", *order.CustomerEmail).Limit(1).Find(&customer).Error
			if err != nil {
				return persistence(err, "customer")
			}
			if customer.ID != "" {
				order.CustomerID = &customer.ID
			}
		}

		if order.TableName == "" {
			var table models.Table
			if err := tx.Select("id", "name").First(&table, "id = ?", in.TableID).Error; err != nil {
				return persistence(err, "table")
			}
			order.TableName = table.Name
		}
		if err := tx.Create(order).Error; err != nil {
			return persistence(err, "order")
		}

		_, err := s.tables.Occupy(tx, in.TableID, in.CustomerName, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"table_id": order.TableID,
		"items":    len(order.Items),
	}).Info("order submitted")
	s.publish(ctx, notifier.OrderNew, order)
	return order, nil
}

// UpdateStatus sets the order status. Entering confirmed, ready or completed
// stamps the matching timestamp once; the first completion adds the order
// total to the customer's spend.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string, queuePosition *int) (*models.Order, error) {
	next, err := statemachine.ParseStatus(status)
	if err != nil {
		return nil, Invalid("status", err.Error())
	}
	if queuePosition != nil && *queuePosition < 0 {
		return nil, Invalid("queuePosition", "must be greater than or equal to 0")
	}

	db := s.db.WithContext(ctx)
	var current models.Order
	if err := db.First(&current, "id = ?", orderID).Error; err != nil {
		return nil, persistence(err, "order")
	}
	if s.strict {
		if err := statemachine.CanTransition(current.Status, next); err != nil {
			return nil, conflictWith(map[string]string{"currentStatus": string(current.Status)}, "%s", err.Error())
		}
	}

	now := s.now()
	firstCompletion := false
	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": next, "updated_at": now}
		if queuePosition != nil {
			updates["queue_position"] = *queuePosition
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return persistence(err, "order")
		}

		col := statemachine.StampColumn(next)
		if col == "" {
			return nil
		}
		q := tx.Model(&models.Order{}).Where("id = ?", orderID)
		for _, guard := range statemachine.StampGuard(next) {
			q = q.Where(guard + " IS NULL")
		}
		res := q.Update(col, now)
		if res.Error != nil {
			return persistence(res.Error, "order")
		}
		firstCompletion = next == models.StatusCompleted && res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if firstCompletion && order.CustomerEmail != nil {
		s.customers.RecordSpend(ctx, *order.CustomerEmail, order.TotalAmount)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     current.Status,
		"to":       next,
	}).Info("order status updated")

	s.publish(ctx, notifier.OrderUpdated, order)
	if next == models.StatusConfirmed {
		s.publish(ctx, notifier.OrderConfirmed, order)
	}
	return order, nil
}

// AddItems appends items and raises the total by the caller supplied amount
func (s *OrderService) AddItems(ctx context.Context, orderID string, in AddItemsInput) (*models.Order, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id").First(&order, "id = ?", orderID).Error; err != nil {
			return persistence(err, "order")
		}
		if err := ensureMenuItems(tx, in.Items); err != nil {
			return err
		}

		items := buildItems(in.Items, now)
		for i := range items {
			items[i].OrderID = orderID
		}
		if err := tx.Create(&items).Error; err != nil {
			return persistence(err, "order items")
		}

		err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"total_amount": gorm.Expr("total_amount + ?", in.AdditionalAmount),
			"updated_at":   now,
		}).Error
		return persistence(err, "order")
	})
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifier.OrderUpdated, order)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, persistence(err, "order")
	}
	return &order, nil
}

// List returns orders newest first with their items
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("created_at desc")
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.TableID != "" {
		q = q.Where("table_id = ?", f.TableID)
	}

	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, persistence(err, "orders")
	}
	return orders, nil
}

// ParseStatuses splits a comma separated status filter
func ParseStatuses(raw string) ([]models.OrderStatus, error) {
	known := map[models.OrderStatus]bool{models.StatusPending: true}
	for _, st := range statemachine.SettableStatuses() {
		known[st] = true
	}

	var out []models.OrderStatus
	for _, part := range strings.Split(raw, ",") {
		status := models.OrderStatus(strings.ToLower(strings.TrimSpace(part)))
		if status == "" {
			continue
		}
		if !known[status] {
			return nil, Invalid("status", "unknown status "+string(status))
		}
		out = append(out, status)
	}
	return out, nil
}

func buildItems(in []OrderItemInput, now time.Time) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		items = append(items, models.OrderItem{
			MenuItemID:     it.MenuItemID,
			MenuItemName:   it.MenuItemName,
			Quantity:       it.Quantity,
			BasePrice:      it.BasePrice,
			Customizations: it.Customizations,
			CustomerNotes:  it.CustomerNotes,
			ItemTotal:      it.ItemTotal,
			CreatedAt:      now,
		})
	}
	return items
}

// ensureMenuItems fails with NotFound naming the first unknown menu item
func ensureMenuItems(tx *gorm.DB, items []OrderItemInput) error {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.MenuItemID] {
			seen[it.MenuItemID] = true
			ids = append(ids, it.MenuItemID)
		}
	}

	var found []string
	if err := tx.Model(&models.MenuItem{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return persistence(err, "menu items")
	}
	known := make(map[string]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return NotFound("menu item %s not found", id)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeEmailPtr(email *string) *string {
	if email == nil {
		return nil
	}
	e := normalizeEmail(*email)
	if e == "" {
		return nil
	}
	return &e
}
