package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"restaurant-api/models"
	"restaurant-api/notifier"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTableInput struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

// UpdateTableInput is a partial table edit. Occupants accepts a list or a
// single occupant object.
type UpdateTableInput struct {
	Name             *string             `json:"name" validate:"omitempty,min=1,max=50"`
	Status           *models.TableStatus `json:"status" validate:"omitempty,oneof=available occupied"`
	OccupiedSince    *time.Time          `json:"occupiedSince"`
	CurrentOccupants json.RawMessage     `json:"currentOccupants"`
}

// TableService tracks table occupancy and the locator URL a table's QR code encodes
type TableService struct {
	base
	settings  *SettingsService
	appDomain string
}

// Occupy seats customerName at the table, replacing any previous occupants.
// It runs inside the caller's transaction.
func (s *TableService) Occupy(tx *gorm.DB, tableID, customerName string, now time.Time) (*models.Table, error) {
	res := tx.Model(&models.Table{}).Where("id = ?", tableID).Updates(map[string]interface{}{
		"status":            models.TableOccupied,
		"occupied_since":    now,
		"current_occupants": models.Occupants{{Name: customerName, JoinedAt: now}},
		"updated_at":        now,
	})
	if res.Error != nil {
		return nil, persistence(res.Error, "table")
	}
	if res.RowsAffected == 0 {
		return nil, NotFound("table not found")
	}

	var table models.Table
	if err := tx.First(&table, "id = ?", tableID).Error; err != nil {
		return nil, persistence(err, "table")
	}
	return &table, nil
}

func (s *TableService) List(ctx context.Context, status models.TableStatus) ([]models.Table, error) {
	q := s.db.WithContext(ctx).Order("name asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	tables := []models.Table{}
	if err := q.Find(&tables).Error; err != nil {
		return nil, persistence(err, "tables")
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id string) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, persistence(err, "table")
	}
	return &table, nil
}

func (s *TableService) Create(ctx context.Context, in CreateTableInput) (*models.Table, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, ""); err != nil {
		return nil, err
	}

	base, err := s.locatorBase(ctx)
	if err != nil {
		return nil, err
	}
	table := &models.Table{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Status:           models.TableAvailable,
		CurrentOccupants: models.Occupants{},
	}
	table.QRCodeURL = LocatorURL(base, table.Name, table.ID)

	if err := s.db.WithContext(ctx).Create(table).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("table name already exists")
		}
		return nil, persistence(err, "table")
	}
	s.publish(ctx, notifier.TableUpdated, table)
	return table, nil
}

// Update applies an explicit staff edit. A name change regenerates the locator.
func (s *TableService) Update(ctx context.Context, id string, in UpdateTableInput) (*models.Table, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := check(in); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil && *in.Name != current.Name {
		if err := s.ensureNameFree(ctx, *in.Name, id); err != nil {
			return nil, err
		}
		base, err := s.locatorBase(ctx)
		if err != nil {
			return nil, err
		}
		updates["name"] = *in.Name
		updates["qr_code_url"] = LocatorURL(base, *in.Name, id)
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.OccupiedSince != nil {
		updates["occupied_since"] = in.OccupiedSince.UTC()
	}
	if len(in.CurrentOccupants) > 0 {
		occupants, err := parseOccupants(in.CurrentOccupants)
		if err != nil {
			return nil, err
		}
		updates["current_occupants"] = occupants
	}

	if len(updates) > 0 {
		updates["updated_at"] = s.now()
		if err := s.db.WithContext(ctx).Model(&models.Table{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, Conflict("table name already exists")
			}
			return nil, persistence(err, "table")
		}
	}

	table, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifier.TableUpdated, table)
	return table, nil
}

func (s *TableService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Table{})
	if res.Error != nil {
		return persistence(res.Error, "table")
	}
	if res.RowsAffected == 0 {
		return NotFound("table not found")
	}
	return nil
}

// RegenerateLocators rewrites every table's locator, e.g. after the customer
// menu base URL changed.
func (s *TableService) RegenerateLocators(ctx context.Context) ([]models.Table, error) {
	base, err := s.locatorBase(ctx)
	if err != nil {
		return nil, err
	}

	tables := []models.Table{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("name asc").Find(&tables).Error; err != nil {
			return persistence(err, "tables")
		}
		for i := range tables {
			tables[i].QRCodeURL = LocatorURL(base, tables[i].Name, tables[i].ID)
			err := tx.Model(&models.Table{}).Where("id = ?", tables[i].ID).
				Update("qr_code_url", tables[i].QRCodeURL).Error
			if err != nil {
				return persistence(err, "table")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// LocatorURL is the customer menu address for a table
func LocatorURL(base, name, id string) string {
	return fmt.Sprintf("%s/table/%s?tableId=%s", base, url.PathEscape(name), url.QueryEscape(id))
}

func (s *TableService) locatorBase(ctx context.Context) (string, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	base := ""
	if settings.CustomerMenuBaseURL != nil {
		base = strings.TrimSuffix(strings.TrimSpace(*settings.CustomerMenuBaseURL), "/")
	}
	if base == "" {
		base = strings.TrimSuffix("http://"+s.appDomain, "/")
	}
	// development hosts have no TLS
	if strings.Contains(base, "localhost") || strings.Contains(base, "127.0.0.1") {
		base = "http://" + strings.TrimPrefix(strings.TrimPrefix(base, "https://"), "http://")
	}
	return base, nil
}

func (s *TableService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	q := s.db.WithContext(ctx).Model(&models.Table{}).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return persistence(err, "tables")
	}
	if n > 0 {
		return Conflict("table name already exists")
	}
	return nil
}

func parseOccupants(raw json.RawMessage) (models.Occupants, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return models.Occupants{}, nil
	}
	if len(raw) > 0 && raw[0] == '{' {
		var one models.Occupant
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, Invalid("currentOccupants", "must be an occupant or a list of occupants")
		}
		return models.Occupants{one}, nil
	}
	var many models.Occupants
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, Invalid("currentOccupants", "must be an occupant or a list of occupants")
	}
	if many == nil {
		many = models.Occupants{}
	}
	return many, nil
}
