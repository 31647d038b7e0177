package services

import (
	"context"
	"encoding/json"
	"testing"

	"restaurant-api/models"
	"restaurant-api/notifier"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	table := f.table(t, "Table 1")
	f.rec.reset()

	order := f.order(t, table, nil, "12.99")

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "Table 1", order.TableName)
	assert.Equal(t, models.SourceCustomer, order.OrderSource)
	require.Len(t, order.Items, 1)
	assert.Nil(t, order.ClaimedBy)
	assert.Nil(t, order.ClaimedAt)

	seated, err := f.svc.Tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, seated.Status)
	require.NotNil(t, seated.OccupiedSince)
	require.Len(t, seated.CurrentOccupants, 1)
	assert.Equal(t, "Ann", seated.CurrentOccupants[0].Name)

	assert.Equal(t, []string{notifier.MenuUpdated, notifier.OrderNew}, f.rec.names())
}

func TestSubmitOrderReplacesOccupants(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	table := f.table(t, "Table 2")
	item := f.menuItem(t, "Soup", "4.50")

	for _, name := range []string{"Ann", "Bob"} {
		_, err := f.svc.Orders.Submit(ctx, SubmitOrderInput{
			TableID:      table.ID,
			CustomerName: name,
			Items:        []OrderItemInput{{MenuItemID: item.ID, Quantity: 1, BasePrice: item.Price, ItemTotal: item.Price}},
			TotalAmount:  item.Price,
		})
		require.NoError(t, err)
	}

	seated, err := f.svc.Tables.Get(ctx, table.ID)
	require.NoError(t, err)
	require.Len(t, seated.CurrentOccupants, 1)
	assert.Equal(t, "Bob", seated.CurrentOccupants[0].Name)
}

func TestSubmitOrderLinksKnownCustomer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	customer, _, err := f.svc.Customers.Upsert(ctx, UpsertCustomerInput{Email: "ann@example.com"})
	require.NoError(t, err)

	order := f.order(t, f.table(t, "T"), strPtr(" Ann@Example.com "), "10")
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, customer.ID, *order.CustomerID)
	assert.Equal(t, "ann@example.com", *order.CustomerEmail)
}

func TestSubmitOrderValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	table := f.table(t, "T")
	item := f.menuItem(t, "Soup", "4.50")
	valid := OrderItemInput{MenuItemID: item.ID, Quantity: 1, BasePrice: item.Price, ItemTotal: item.Price}

	cases := map[string]struct {
		in    SubmitOrderInput
		field string
	}{
		"no items": {
			in:    SubmitOrderInput{TableID: table.ID, CustomerName: "Ann"},
			field: "items",
		},
		"zero quantity": {
			in: SubmitOrderInput{TableID: table.ID, CustomerName: "Ann", Items: []OrderItemInput{
				{MenuItemID: item.ID, Quantity: 0, BasePrice: item.Price, ItemTotal: item.Price},
			}},
			field: "items[0].quantity",
		},
		"negative price": {
			in: SubmitOrderInput{TableID: table.ID, CustomerName: "Ann", Items: []OrderItemInput{
				{MenuItemID: item.ID, Quantity: 1, BasePrice: decimal.NewFromInt(-1), ItemTotal: item.Price},
			}},
			field: "items[0].basePrice",
		},
		"negative total": {
			in:    SubmitOrderInput{TableID: table.ID, CustomerName: "Ann", Items: []OrderItemInput{valid}, TotalAmount: decimal.NewFromInt(-5)},
			field: "totalAmount",
		},
		"blank name": {
			in:    SubmitOrderInput{TableID: table.ID, CustomerName: "   ", Items: []OrderItemInput{valid}},
			field: "customerName",
		},
		"unknown source": {
			in:    SubmitOrderInput{TableID: table.ID, CustomerName: "Ann", Items: []OrderItemInput{valid}, OrderSource: "kiosk"},
			field: "orderSource",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Orders.Submit(ctx, tc.in)
			requireKind(t, err, KindValidation)
			e, _ := AsError(err)
			assert.Contains(t, e.Fields, tc.field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitOrderUnknownMenuItem(t *testing.T) {
	f := setup(t)
	table := f.table(t, "T")

	_, err := f.svc.Orders.Submit(context.Background(), SubmitOrderInput{
		TableID:      table.ID,
		CustomerName: "Ann",
		Items: []OrderItemInput{{
			MenuItemID: "6f1c1f0e-0000-4000-8000-000000000000",
			Quantity:   1,
		}},
	})
	requireKind(t, err, KindNotFound)
}

func TestSubmitOrderRollsBackWhenTableMissing(t *testing.T) {
	f := setup(t)
	item := f.menuItem(t, "Soup", "4.50")
	f.rec.reset()

	_, err := f.svc.Orders.Submit(context.Background(), SubmitOrderInput{
		TableID:      "0b7d6a4c-1111-4000-8000-000000000000",
		TableName:    "Ghost table",
		CustomerName: "Ann",
		Items:        []OrderItemInput{{MenuItemID: item.ID, Quantity: 1, BasePrice: item.Price, ItemTotal: item.Price}},
		TotalAmount:  item.Price,
	})
	requireKind(t, err, KindNotFound)

	var orders, items int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Empty(t, f.rec.names())
}

func TestUpdateStatusStampsTimestamps(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.order(t, f.table(t, "T"), nil, "10")

	confirmed, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "confirmed", nil)
	require.NoError(t, err)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Nil(t, confirmed.ReadyAt)
	assert.Nil(t, confirmed.CompletedAt)

	preparing, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "preparing", intPtr(3))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, preparing.Status)
	assert.Nil(t, preparing.ReadyAt)
	require.NotNil(t, preparing.QueuePosition)
	assert.Equal(t, 3, *preparing.QueuePosition)

	_, err = f.svc.Orders.UpdateStatus(ctx, order.ID, "ready", nil)
	require.NoError(t, err)
	completed, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "completed", nil)
	require.NoError(t, err)

	require.NotNil(t, completed.ReadyAt)
	require.NotNil(t, completed.CompletedAt)
	assert.True(t, completed.ConfirmedAt.Before(*completed.ReadyAt))
	assert.True(t, completed.ReadyAt.Before(*completed.CompletedAt))
	assert.True(t, confirmed.ConfirmedAt.Equal(*completed.ConfirmedAt), "confirmedAt must not move")
}

func TestUpdateStatusHasNoPreparingTimestamp(t *testing.T) {
	f := setup(t)
	order := f.order(t, f.table(t, "T"), nil, "10")

	updated, err := f.svc.Orders.UpdateStatus(context.Background(), order.ID, "preparing", nil)
	require.NoError(t, err)

	raw, err := json.Marshal(updated)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "preparingAt")
	assert.Nil(t, fields["confirmedAt"])
}

func TestUpdateStatusKeepsFirstTimestamp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.order(t, f.table(t, "T"), nil, "10")

	first, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "confirmed", nil)
	require.NoError(t, err)
	again, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "confirmed", nil)
	require.NoError(t, err)
	assert.True(t, first.ConfirmedAt.Equal(*again.ConfirmedAt))

	// going backwards does not stamp behind a later stage
	_, err = f.svc.Orders.UpdateStatus(ctx, order.ID, "completed", nil)
	require.NoError(t, err)
	direct := f.order(t, f.table(t, "T2"), nil, "5")
	_, err = f.svc.Orders.UpdateStatus(ctx, direct.ID, "completed", nil)
	require.NoError(t, err)
	back, err := f.svc.Orders.UpdateStatus(ctx, direct.ID, "ready", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, back.Status)
	assert.Nil(t, back.ReadyAt)
}

func TestUpdateStatusEvents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.order(t, f.table(t, "T"), nil, "10")

	f.rec.reset()
	_, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "confirmed", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{notifier.OrderUpdated, notifier.OrderConfirmed}, f.rec.names())

	f.rec.reset()
	_, err = f.svc.Orders.UpdateStatus(ctx, order.ID, "ready", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{notifier.OrderUpdated}, f.rec.names())
	payload, ok := f.rec.last().Payload.(*models.Order)
	require.True(t, ok)
	assert.Equal(t, models.StatusReady, payload.Status)
}

func TestUpdateStatusRejectsUnknownAndPending(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.order(t, f.table(t, "T"), nil, "10")

	for _, s := range []string{"pending", "served", ""} {
		_, err := f.svc.Orders.UpdateStatus(ctx, order.ID, s, nil)
		requireKind(t, err, KindValidation)
	}
	_, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "confirmed", intPtr(-1))
	requireKind(t, err, KindValidation)

	_, err = f.svc.Orders.UpdateStatus(ctx, "missing", "confirmed", nil)
	requireKind(t, err, KindNotFound)
}

func TestUpdateStatusPermissiveByDefault(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.order(t, f.table(t, "T"), nil, "10")

	_, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "completed", nil)
	require.NoError(t, err)
	back, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "confirmed", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, back.Status)
}

func TestUpdateStatusStrictTransitions(t *testing.T) {
	f := setup(t)
	f.svc.Orders.strict = true
	ctx := context.Background()
	order := f.order(t, f.table(t, "T"), nil, "10")

	_, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "ready", nil)
	requireKind(t, err, KindConflict)

	_, err = f.svc.Orders.UpdateStatus(ctx, order.ID, "confirmed", nil)
	require.NoError(t, err)
}

func TestCompletionAddsSpendOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	email := "ann@example.com"
	customer, _, err := f.svc.Customers.Upsert(ctx, UpsertCustomerInput{Email: email})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(customer).Update("total_spent", decimal.NewFromInt(100)).Error)

	order := f.order(t, f.table(t, "T"), &email, "25")

	_, err = f.svc.Orders.UpdateStatus(ctx, order.ID, "completed", nil)
	require.NoError(t, err)
	assertSpent(t, f, email, "125")

	// a retried completion must not count twice
	_, err = f.svc.Orders.UpdateStatus(ctx, order.ID, "completed", nil)
	require.NoError(t, err)
	assertSpent(t, f, email, "125")
}

func TestCompletionWithoutCustomerProfile(t *testing.T) {
	f := setup(t)
	email := "walkin@example.com"
	order := f.order(t, f.table(t, "T"), &email, "25")

	completed, err := f.svc.Orders.UpdateStatus(context.Background(), order.ID, "completed", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
}

func TestAddItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.order(t, f.table(t, "T"), nil, "10")
	extra := f.menuItem(t, "Tiramisu", "6.50")
	f.rec.reset()

	updated, err := f.svc.Orders.AddItems(ctx, order.ID, AddItemsInput{
		Items: []OrderItemInput{{
			MenuItemID: extra.ID, Quantity: 2, BasePrice: extra.Price, ItemTotal: decimal.RequireFromString("13"),
		}},
		AdditionalAmount: decimal.RequireFromString("13"),
	})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.True(t, decimal.RequireFromString("23").Equal(updated.TotalAmount), updated.TotalAmount.String())
	assert.Equal(t, []string{notifier.OrderUpdated}, f.rec.names())

	_, err = f.svc.Orders.AddItems(ctx, order.ID, AddItemsInput{})
	requireKind(t, err, KindValidation)

	_, err = f.svc.Orders.AddItems(ctx, "missing", AddItemsInput{
		Items:            []OrderItemInput{{MenuItemID: extra.ID, Quantity: 1}},
		AdditionalAmount: decimal.Zero,
	})
	requireKind(t, err, KindNotFound)
}

func TestListOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	t1 := f.table(t, "T1")
	first := f.order(t, t1, nil, "10")
	second := f.order(t, f.table(t, "T2"), nil, "10")
	_, err := f.svc.Orders.UpdateStatus(ctx, second.ID, "confirmed", nil)
	require.NoError(t, err)

	all, err := f.svc.Orders.List(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	pending, err := f.svc.Orders.List(ctx, OrderFilter{Statuses: []models.OrderStatus{models.StatusPending}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	byTable, err := f.svc.Orders.List(ctx, OrderFilter{TableID: t1.ID})
	require.NoError(t, err)
	require.Len(t, byTable, 1)
	assert.Len(t, byTable[0].Items, 1)
}

func TestParseStatuses(t *testing.T) {
	got, err := ParseStatuses("pending, Ready,,")
	require.NoError(t, err)
	assert.Equal(t, []models.OrderStatus{models.StatusPending, models.StatusReady}, got)

	_, err = ParseStatuses("pending,lost")
	requireKind(t, err, KindValidation)
}

func assertSpent(t *testing.T, f *fixture, email, want string) {
	t.Helper()
	var c models.Customer
	require.NoError(t, f.db.First(&c, "email = ?", email).Error)
	assert.True(t, decimal.RequireFromString(want).Equal(c.TotalSpent), "totalSpent = %s", c.TotalSpent)
}
