// Package seed loads demo accounts, branding, menu and tables into an empty
// database. Running it twice leaves existing rows untouched.
package seed

import (
	"context"

	"restaurant-api/models"
	"restaurant-api/services"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var staff = []services.CreateUserInput{
	{Email: "admin@restaurant.com", Password: "admin123", Role: models.RoleAdmin, Permissions: models.StringArray{"all"}},
	{Email: "waiter@restaurant.com", Password: "waiter123", Role: models.RoleWaiter,
		Permissions: models.StringArray{"orders:read", "orders:update", "tables:read", "calls:read", "calls:update"}},
	// passwords need eight characters
	{Email: "chef@restaurant.com", Password: "chef1234", Role: models.RoleChef,
		Permissions: models.StringArray{"orders:read", "orders:update"}},
}

var menu = []services.MenuItemInput{
	{
		Name:             "Margherita Pizza",
		NameTranslations: models.Translations{"tr": "Margherita Pizza", "en": "Margherita Pizza"},
		Description:      "Classic pizza with tomato sauce, mozzarella, and basil",
		DescriptionTranslations: models.Translations{
			"tr": "Domates sosu, mozzarella ve fesleğen ile klasik pizza",
			"en": "Classic pizza with tomato sauce, mozzarella, and basil",
		},
		Price:       decimal.RequireFromString("12.99"),
		Category:    "Pizza",
		IsPopular:   true,
		PopularRank: intPtr(1),
		Allergens:   models.StringArray{"gluten", "dairy"},
	},
	{
		Name:             "Caesar Salad",
		NameTranslations: models.Translations{"tr": "Sezar Salata", "en": "Caesar Salad"},
		Description:      "Fresh romaine lettuce with Caesar dressing and croutons",
		DescriptionTranslations: models.Translations{
			"tr": "Sezar sosu ve krutonlarla taze marul",
			"en": "Fresh romaine lettuce with Caesar dressing and croutons",
		},
		Price:     decimal.RequireFromString("8.99"),
		Category:  "Salads",
		Allergens: models.StringArray{"gluten", "dairy", "eggs"},
	},
	{
		Name:             "Grilled Salmon",
		NameTranslations: models.Translations{"tr": "Izgara Somon", "en": "Grilled Salmon"},
		Description:      "Fresh salmon fillet with vegetables",
		DescriptionTranslations: models.Translations{
			"tr": "Sebzelerle taze somon fileto",
			"en": "Fresh salmon fillet with vegetables",
		},
		Price:       decimal.RequireFromString("18.99"),
		Category:    "Main Course",
		IsPopular:   true,
		PopularRank: intPtr(2),
		Allergens:   models.StringArray{"fish"},
	},
}

var tables = []string{"Table 1", "Table 2", "Table 3", "Table 4", "Table 5"}

// Run seeds everything that is missing
func Run(ctx context.Context, svc *services.Services, log logrus.FieldLogger) error {
	for _, in := range staff {
		user, created, err := svc.Users.EnsureUser(ctx, in)
		if err != nil {
			return errors.Wrapf(err, "seed user %s", in.Email)
		}
		log.WithFields(logrus.Fields{"email": user.Email, "created": created}).Info("staff account ready")
	}

	if err := seedBranding(ctx, svc); err != nil {
		return err
	}
	log.Info("branding ready")

	existing, err := svc.Menu.List(ctx, services.MenuFilter{})
	if err != nil {
		return errors.Wrap(err, "seed menu")
	}
	names := make(map[string]bool, len(existing))
	for _, item := range existing {
		names[item.Name] = true
	}
	for _, in := range menu {
		if names[in.Name] {
			continue
		}
		if _, err := svc.Menu.Create(ctx, in); err != nil {
			return errors.Wrapf(err, "seed menu item %s", in.Name)
		}
	}
	log.WithField("items", len(menu)).Info("menu ready")

	for _, name := range tables {
		_, err := svc.Tables.Create(ctx, services.CreateTableInput{Name: name})
		if err != nil && services.KindOf(err) != services.KindConflict {
			return errors.Wrapf(err, "seed table %s", name)
		}
	}
	log.WithField("tables", len(tables)).Info("tables ready")
	return nil
}

// seedBranding only replaces settings that still carry the defaults
func seedBranding(ctx context.Context, svc *services.Services) error {
	current, err := svc.Settings.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "seed settings")
	}
	if current.RestaurantName != models.DefaultSettings().RestaurantName {
		return nil
	}
	_, err = svc.Settings.Update(ctx, services.UpdateSettingsInput{
		RestaurantName: strPtr("QR Restaurant"),
		PrimaryColor:   strPtr("#6200EE"),
		SecondaryColor: strPtr("#03DAC6"),
		AccentColor:    strPtr("#FF6B6B"),
	})
	return errors.Wrap(err, "seed settings")
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
