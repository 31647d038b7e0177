package services

import (
	"context"
	"database/sql"

	"restaurant-api/models"
	"restaurant-api/notifier"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ClaimCoordinator records which staff member is handling an order or a call
// request. A claim is a single conditional update, so two staff racing for the
// same entity cannot both win.
type ClaimCoordinator struct {
	base
}

func (c *ClaimCoordinator) ClaimOrder(ctx context.Context, orderID, staffID string) (*models.Order, error) {
	if err := c.claim(ctx, &models.Order{}, "order", orderID, staffID); err != nil {
		return nil, err
	}
	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	c.publish(ctx, notifier.OrderClaimed, order)
	return order, nil
}

func (c *ClaimCoordinator) ReleaseOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if err := c.release(ctx, &models.Order{}, "order", orderID); err != nil {
		return nil, err
	}
	order, err := c.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	c.publish(ctx, notifier.OrderReleased, order)
	return order, nil
}

func (c *ClaimCoordinator) ClaimCall(ctx context.Context, callID, staffID string) (*models.CallRequest, error) {
	if err := c.claim(ctx, &models.CallRequest{}, "call request", callID, staffID); err != nil {
		return nil, err
	}
	call, err := c.loadCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	c.publish(ctx, notifier.CallClaimed, call)
	return call, nil
}

func (c *ClaimCoordinator) ReleaseCall(ctx context.Context, callID string) (*models.CallRequest, error) {
	if err := c.release(ctx, &models.CallRequest{}, "call request", callID); err != nil {
		return nil, err
	}
	call, err := c.loadCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	c.publish(ctx, notifier.CallReleased, call)
	return call, nil
}

// CompleteCall closes a call request. Claim fields are left as they are and
// the completing staff member does not need to hold the claim. Completing an
// already completed request records the latest completion.
func (c *ClaimCoordinator) CompleteCall(ctx context.Context, callID, staffID string) (*models.CallRequest, error) {
	if staffID == "" {
		return nil, Invalid("staffId", "is required")
	}

	res := c.db.WithContext(ctx).Model(&models.CallRequest{}).
		Where("id = ?", callID).
		Updates(map[string]interface{}{
			"status":       models.CallCompleted,
			"completed_at": c.now(),
			"completed_by": staffID,
		})
	if res.Error != nil {
		return nil, persistence(res.Error, "call request")
	}
	if res.RowsAffected == 0 {
		return nil, NotFound("call request not found")
	}

	call, err := c.loadCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"call_id": callID, "staff_id": staffID}).Info("call request completed")
	c.publish(ctx, notifier.CallCompleted, call)
	return call, nil
}

// claim sets the holder when the entity is unclaimed or already held by
// staffID. A self reclaim refreshes claimed_at.
func (c *ClaimCoordinator) claim(ctx context.Context, model interface{}, what, id, staffID string) error {
	if staffID == "" {
		return Invalid("staffId", "is required")
	}

	db := c.db.WithContext(ctx)
	res := db.Model(model).
		Where("id = ? AND (claimed_by IS NULL OR claimed_by = ?)", id, staffID).
		Updates(map[string]interface{}{
			"claimed_by": staffID,
			"claimed_at": c.now(),
		})
	if res.Error != nil {
		return persistence(res.Error, what)
	}
	if res.RowsAffected > 0 {
		c.log.WithFields(logrus.Fields{"id": id, "staff_id": staffID}).Debugf("%s claimed", what)
		return nil
	}

	var holders []sql.NullString
	if err := db.Model(model).Where("id = ?", id).Pluck("claimed_by", &holders).Error; err != nil {
		return persistence(err, what)
	}
	if len(holders) == 0 {
		return NotFound("%s not found", what)
	}
	return conflictWith(map[string]string{"claimedBy": holders[0].String},
		"%s already claimed by another staff member", what)
}

// release clears the claim whoever holds it
func (c *ClaimCoordinator) release(ctx context.Context, model interface{}, what, id string) error {
	res := c.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"claimed_by": gorm.Expr("NULL"),
			"claimed_at": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return persistence(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return NotFound("%s not found", what)
	}
	return nil
}

func (c *ClaimCoordinator) loadOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := c.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, persistence(err, "order")
	}
	return &order, nil
}

func (c *ClaimCoordinator) loadCall(ctx context.Context, id string) (*models.CallRequest, error) {
	var call models.CallRequest
	if err := c.db.WithContext(ctx).First(&call, "id = ?", id).Error; err != nil {
		return nil, persistence(err, "call request")
	}
	return &call, nil
}
