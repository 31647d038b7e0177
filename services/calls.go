package services

import (
	"context"
	"strings"

	"restaurant-api/models"
	"restaurant-api/notifier"

	"github.com/sirupsen/logrus"
)

type CreateCallInput struct {
	TableID      string          `json:"tableId" validate:"required,uuid"`
	TableName    string          `json:"tableName" validate:"max=50"`
	CustomerName string          `json:"customerName" validate:"required,min=1,max=100"`
	Type         models.CallType `json:"type" validate:"required,oneof=bill napkin cleaning"`
}

type CallRequestService struct {
	base
}

// Create raises a call request. Only one pending request per table and type
// may exist; the partial unique index catches inserts racing the check.
func (s *CallRequestService) Create(ctx context.Context, in CreateCallInput) (*models.CallRequest, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.TableName = strings.TrimSpace(in.TableName)
	if err := check(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var table models.Table
	if err := db.Select("id", "name").First(&table, "id = ?", in.TableID).Error; err != nil {
		return nil, persistence(err, "table")
	}
	if in.TableName == "" {
		in.TableName = table.Name
	}

	var pending int64
	err := db.Model(&models.CallRequest{}).
		Where("table_id = ? AND type = ? AND status = ?", in.TableID, in.Type, models.CallPending).
		Count(&pending).Error
	if err != nil {
		return nil, persistence(err, "call requests")
	}
	if pending > 0 {
		return nil, duplicateCall(in.Type)
	}

	call := &models.CallRequest{
		TableID:      in.TableID,
		TableName:    in.TableName,
		CustomerName: in.CustomerName,
		Type:         in.Type,
		Status:       models.CallPending,
		CreatedAt:    s.now(),
	}
	if err := db.Create(call).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, duplicateCall(in.Type)
		}
		return nil, persistence(err, "call request")
	}

	s.log.WithFields(logrus.Fields{
		"call_id":  call.ID,
		"table_id": call.TableID,
		"type":     call.Type,
	}).Info("call request created")
	s.publish(ctx, notifier.CallNew, call)
	return call, nil
}

// List returns call requests oldest first
func (s *CallRequestService) List(ctx context.Context, status models.CallStatus, tableID string) ([]models.CallRequest, error) {
	q := s.db.WithContext(ctx).Order("created_at asc")
	if status != "" {
		if status != models.CallPending && status != models.CallCompleted {
			return nil, Invalid("status", "must be one of: pending completed")
		}
		q = q.Where("status = ?", status)
	}
	if tableID != "" {
		q = q.Where("table_id = ?", tableID)
	}

	calls := []models.CallRequest{}
	if err := q.Find(&calls).Error; err != nil {
		return nil, persistence(err, "call requests")
	}
	return calls, nil
}

func duplicateCall(t models.CallType) error {
	return conflictWith(map[string]string{"type": string(t)},
		"a pending %s request already exists for this table", t)
}
