package services

import (
	"context"
	"strings"

	"restaurant-api/models"
	"restaurant-api/notifier"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UpdateSettingsInput struct {
	Logo                *string               `json:"logo" validate:"omitempty,url_or_path"`
	PrimaryColor        *string               `json:"primaryColor" validate:"omitempty,hex_color"`
	SecondaryColor      *string               `json:"secondaryColor" validate:"omitempty,hex_color"`
	AccentColor         *string               `json:"accentColor" validate:"omitempty,hex_color"`
	RestaurantName      *string               `json:"restaurantName" validate:"omitempty,min=1,max=100"`
	CustomerMenuBaseURL *string               `json:"customerMenuBaseUrl" validate:"omitempty,http_url"`
	MenuCategories      []string              `json:"menuCategories"`
	CrossSellRules      models.CrossSellRules `json:"crossSellRules"`
}

// SettingsService owns the single branding row
type SettingsService struct {
	base
}

// Get returns the branding settings, creating the defaults on first read
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.get(s.db.WithContext(ctx))
}

func (s *SettingsService) get(db *gorm.DB) (*models.Settings, error) {
	defaults := models.DefaultSettings()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return nil, persistence(err, "settings")
	}
	var settings models.Settings
	if err := db.First(&settings, "id = ?", models.SettingsID).Error; err != nil {
		return nil, persistence(err, "settings")
	}
	return &settings, nil
}

func (s *SettingsService) Update(ctx context.Context, in UpdateSettingsInput) (*models.Settings, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Logo != nil {
		updates["logo"] = nullIfBlank(*in.Logo)
	}
	if in.PrimaryColor != nil {
		updates["primary_color"] = strings.ToUpper(*in.PrimaryColor)
	}
	if in.SecondaryColor != nil {
		updates["secondary_color"] = strings.ToUpper(*in.SecondaryColor)
	}
	if in.AccentColor != nil {
		updates["accent_color"] = strings.ToUpper(*in.AccentColor)
	}
	if in.RestaurantName != nil {
		updates["restaurant_name"] = strings.TrimSpace(*in.RestaurantName)
	}
	if in.CustomerMenuBaseURL != nil {
		updates["customer_menu_base_url"] = nullIfBlank(strings.TrimSuffix(strings.TrimSpace(*in.CustomerMenuBaseURL), "/"))
	}
	if in.MenuCategories != nil {
		updates["menu_categories"] = NormalizeCategories(in.MenuCategories)
	}
	if in.CrossSellRules != nil {
		updates["cross_sell_rules"] = in.CrossSellRules
	}

	var settings *models.Settings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(tx); err != nil {
			return err
		}
		if len(updates) > 0 {
			updates["updated_at"] = s.now()
			if err := tx.Model(&models.Settings{}).Where("id = ?", models.SettingsID).Updates(updates).Error; err != nil {
				return persistence(err, "settings")
			}
		}
		var err error
		settings, err = s.get(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifier.SettingsUpdated, settings)
	return settings, nil
}

// NormalizeCategories trims and dedupes categories, keeping first-seen order.
// An empty result falls back to the default list.
func NormalizeCategories(in []string) models.StringArray {
	out := models.StringArray{}
	seen := map[string]bool{}
	for _, c := range in {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, models.DefaultMenuCategories...)
	}
	return out
}

func nullIfBlank(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
