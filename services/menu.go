package services

import (
	"context"
	"strings"

	"restaurant-api/models"
	"restaurant-api/notifier"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItemInput struct {
	Name                    string                  `json:"name" validate:"required,min=1,max=100"`
	NameTranslations        models.Translations     `json:"nameTranslations"`
	Description             string                  `json:"description" validate:"max=1000"`
	DescriptionTranslations models.Translations     `json:"descriptionTranslations"`
	Price                   decimal.Decimal         `json:"price" validate:"gt=0"`
	Category                string                  `json:"category" validate:"required,min=1"`
	ImageURL                *string                 `json:"imageUrl" validate:"omitempty,url_or_path"`
	IsPopular               bool                    `json:"isPopular"`
	PopularRank             *int                    `json:"popularRank" validate:"omitempty,gt=0"`
	DisplayOrder            *int                    `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive                *bool                   `json:"isActive"`
	NutritionalInfo         *models.NutritionalInfo `json:"nutritionalInfo"`
	Allergens               models.StringArray      `json:"allergens"`
}

// MenuItemPatch is a partial menu item update; nil fields are left unchanged
type MenuItemPatch struct {
	Name                    *string                 `json:"name" validate:"omitempty,min=1,max=100"`
	NameTranslations        models.Translations     `json:"nameTranslations"`
	Description             *string                 `json:"description" validate:"omitempty,max=1000"`
	DescriptionTranslations models.Translations     `json:"descriptionTranslations"`
	Price                   *decimal.Decimal        `json:"price"`
	Category                *string                 `json:"category" validate:"omitempty,min=1"`
	ImageURL                *string                 `json:"imageUrl" validate:"omitempty,url_or_path"`
	IsPopular               *bool                   `json:"isPopular"`
	PopularRank             *int                    `json:"popularRank" validate:"omitempty,gt=0"`
	DisplayOrder            *int                    `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive                *bool                   `json:"isActive"`
	NutritionalInfo         *models.NutritionalInfo `json:"nutritionalInfo"`
	Allergens               models.StringArray      `json:"allergens"`
}

type MenuFilter struct {
	Category  string
	IsActive  *bool
	IsPopular *bool
}

type CustomizationInput struct {
	Type          string                      `json:"type" validate:"required,min=1,max=50"`
	Name          string                      `json:"name" validate:"required,min=1,max=100"`
	Options       models.CustomizationOptions `json:"options" validate:"required,min=1,dive"`
	AllowMultiple bool                        `json:"allowMultiple"`
	Required      bool                        `json:"required"`
}

type MenuService struct {
	base
}

// List returns the menu with popular items first, then by display order
func (s *MenuService) List(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	q := s.db.WithContext(ctx).Preload("Customizations").
		Order("is_popular desc").
		Order("CASE WHEN display_order IS NULL THEN 1 ELSE 0 END, display_order asc").
		Order("CASE WHEN popular_rank IS NULL THEN 1 ELSE 0 END, popular_rank asc").
		Order("name asc")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.IsPopular != nil {
		q = q.Where("is_popular = ?", *f.IsPopular)
	}

	items := []models.MenuItem{}
	if err := q.Find(&items).Error; err != nil {
		return nil, persistence(err, "menu items")
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).Preload("Customizations").First(&item, "id = ?", id).Error; err != nil {
		return nil, persistence(err, "menu item")
	}
	return &item, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := check(in); err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		Name:                    in.Name,
		NameTranslations:        in.NameTranslations,
		Description:             in.Description,
		DescriptionTranslations: in.DescriptionTranslations,
		Price:                   in.Price,
		Category:                in.Category,
		ImageURL:                in.ImageURL,
		IsPopular:               in.IsPopular,
		PopularRank:             in.PopularRank,
		DisplayOrder:            in.DisplayOrder,
		IsActive:                true,
		NutritionalInfo:         in.NutritionalInfo,
		Allergens:               in.Allergens,
	}
	if item.Allergens == nil {
		item.Allergens = models.StringArray{}
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, persistence(err, "menu item")
	}
	// gorm skips zero values that carry a column default on insert
	if in.IsActive != nil && !*in.IsActive {
		if err := s.db.WithContext(ctx).Model(item).Update("is_active", false).Error; err != nil {
			return nil, persistence(err, "menu item")
		}
		item.IsActive = false
	}

	s.publish(ctx, notifier.MenuUpdated, map[string]interface{}{"action": "created", "item": item})
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, id string, p MenuItemPatch) (*models.MenuItem, error) {
	if err := check(p); err != nil {
		return nil, err
	}
	if p.Price != nil && !p.Price.IsPositive() {
		return nil, Invalid("price", "must be greater than 0")
	}

	updates := map[string]interface{}{}
	set := func(col string, ok bool, v interface{}) {
		if ok {
			updates[col] = v
		}
	}
	set("name", p.Name != nil, deref(p.Name))
	set("name_translations", p.NameTranslations != nil, p.NameTranslations)
	set("description", p.Description != nil, deref(p.Description))
	set("description_translations", p.DescriptionTranslations != nil, p.DescriptionTranslations)
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	set("category", p.Category != nil, deref(p.Category))
	set("image_url", p.ImageURL != nil, p.ImageURL)
	if p.IsPopular != nil {
		updates["is_popular"] = *p.IsPopular
	}
	set("popular_rank", p.PopularRank != nil, p.PopularRank)
	set("display_order", p.DisplayOrder != nil, p.DisplayOrder)
	if p.IsActive != nil {
		updates["is_active"] = *p.IsActive
	}
	set("nutritional_info", p.NutritionalInfo != nil, p.NutritionalInfo)
	set("allergens", p.Allergens != nil, p.Allergens)

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		updates["updated_at"] = s.now()
		res := db.Model(&models.MenuItem{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, persistence(res.Error, "menu item")
		}
		if res.RowsAffected == 0 {
			return nil, NotFound("menu item not found")
		}
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifier.MenuUpdated, map[string]interface{}{"action": "updated", "item": item})
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", id).Delete(&models.Customization{}).Error; err != nil {
			return persistence(err, "customizations")
		}
		res := tx.Where("id = ?", id).Delete(&models.MenuItem{})
		if res.Error != nil {
			return persistence(res.Error, "menu item")
		}
		if res.RowsAffected == 0 {
			return NotFound("menu item not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, notifier.MenuUpdated, map[string]interface{}{"action": "deleted", "itemId": id})
	return nil
}

func (s *MenuService) ListCustomizations(ctx context.Context, menuItemID string) ([]models.Customization, error) {
	if _, err := s.Get(ctx, menuItemID); err != nil {
		return nil, err
	}
	out := []models.Customization{}
	if err := s.db.WithContext(ctx).Where("menu_item_id = ?", menuItemID).Order("name asc").Find(&out).Error; err != nil {
		return nil, persistence(err, "customizations")
	}
	return out, nil
}

func (s *MenuService) CreateCustomization(ctx context.Context, menuItemID string, in CustomizationInput) (*models.Customization, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, menuItemID); err != nil {
		return nil, err
	}

	c := newCustomization(menuItemID, in)
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, persistence(err, "customization")
	}
	s.publishMenuChange(ctx, menuItemID)
	return c, nil
}

func (s *MenuService) UpdateCustomization(ctx context.Context, id string, in CustomizationInput) (*models.Customization, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var c models.Customization
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, persistence(err, "customization")
	}
	err := db.Model(&c).Updates(map[string]interface{}{
		"type":           in.Type,
		"name":           in.Name,
		"options":        in.Options,
		"allow_multiple": in.AllowMultiple,
		"required":       in.Required,
	}).Error
	if err != nil {
		return nil, persistence(err, "customization")
	}
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, persistence(err, "customization")
	}
	s.publishMenuChange(ctx, c.MenuItemID)
	return &c, nil
}

func (s *MenuService) DeleteCustomization(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)
	var c models.Customization
	if err := db.Select("id", "menu_item_id").First(&c, "id = ?", id).Error; err != nil {
		return persistence(err, "customization")
	}
	if err := db.Delete(&c).Error; err != nil {
		return persistence(err, "customization")
	}
	s.publishMenuChange(ctx, c.MenuItemID)
	return nil
}

// ReplaceCustomizations swaps the whole customization set of a menu item
func (s *MenuService) ReplaceCustomizations(ctx context.Context, menuItemID string, in []CustomizationInput) ([]models.Customization, error) {
	for _, c := range in {
		if err := check(c); err != nil {
			return nil, err
		}
	}

	out := make([]models.Customization, 0, len(in))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.Select("id").First(&item, "id = ?", menuItemID).Error; err != nil {
			return persistence(err, "menu item")
		}
		if err := tx.Where("menu_item_id = ?", menuItemID).Delete(&models.Customization{}).Error; err != nil {
			return persistence(err, "customizations")
		}
		for _, c := range in {
			out = append(out, *newCustomization(menuItemID, c))
		}
		if len(out) == 0 {
			return nil
		}
		return persistence(tx.Create(&out).Error, "customizations")
	})
	if err != nil {
		return nil, err
	}
	s.publishMenuChange(ctx, menuItemID)
	return out, nil
}

func (s *MenuService) publishMenuChange(ctx context.Context, menuItemID string) {
	item, err := s.Get(ctx, menuItemID)
	if err != nil {
		s.log.WithError(err).WithField("menu_item_id", menuItemID).Warn("menu item reload failed")
		return
	}
	s.publish(ctx, notifier.MenuUpdated, map[string]interface{}{"action": "updated", "item": item})
}

func newCustomization(menuItemID string, in CustomizationInput) *models.Customization {
	return &models.Customization{
		MenuItemID:    menuItemID,
		Type:          strings.TrimSpace(in.Type),
		Name:          strings.TrimSpace(in.Name),
		Options:       in.Options,
		AllowMultiple: in.AllowMultiple,
		Required:      in.Required,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
