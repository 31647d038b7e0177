package services

import (
	"context"
	"math"
	"strings"

	"restaurant-api/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultCustomerLimit = 50
	maxCustomerLimit     = 200
)

var customerSortColumns = map[string]string{
	"totalSpent":  "total_spent",
	"visitCount":  "visit_count",
	"lastVisitAt": "last_visit_at",
	"createdAt":   "created_at",
}

type UpsertCustomerInput struct {
	Email        string `json:"email" validate:"required,email"`
	EmailConsent *bool  `json:"emailConsent"`
}

type CustomerQuery struct {
	Search string
	SortBy string
	Order  string
	Page   int
	Limit  int
}

type CustomerSummary struct {
	models.Customer
	OrderCount int64 `json:"orderCount"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type CustomerPage struct {
	Data       []CustomerSummary `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// CustomerService keeps the per-email visit and spend aggregate
type CustomerService struct {
	base
}

// Upsert registers a visit. An existing customer gets visitCount + 1 and a
// fresh lastVisitAt; consent is only replaced when supplied.
func (s *CustomerService) Upsert(ctx context.Context, in UpsertCustomerInput) (*models.Customer, bool, error) {
	return s.upsert(ctx, in, true)
}

func (s *CustomerService) upsert(ctx context.Context, in UpsertCustomerInput, retry bool) (*models.Customer, bool, error) {
	in.Email = normalizeEmail(in.Email)
	if err := check(in); err != nil {
		return nil, false, err
	}

	now := s.now()
	var customer models.Customer
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", in.Email).Limit(1).Find(&customer).Error; err != nil {
			return persistence(err, "customer")
		}

		if customer.ID == "" {
			customer = models.Customer{
				Email:       in.Email,
				VisitCount:  1,
				TotalSpent:  decimal.Zero,
				LastVisitAt: &now,
				CreatedAt:   now,
			}
			if in.EmailConsent != nil {
				customer.EmailConsent = *in.EmailConsent
			}
			created = true
			return persistence(tx.Create(&customer).Error, "customer")
		}

		updates := map[string]interface{}{
			"visit_count":   gorm.Expr("visit_count + 1"),
			"last_visit_at": now,
			"updated_at":    now,
		}
		if in.EmailConsent != nil {
			updates["email_consent"] = *in.EmailConsent
		}
		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).Updates(updates).Error; err != nil {
			return persistence(err, "customer")
		}
		return persistence(tx.First(&customer, "id = ?", customer.ID).Error, "customer")
	})
	if err != nil {
		if retry && isDuplicateKey(err) {
			// lost an insert race for the same email; count it as a visit
			return s.upsert(ctx, in, false)
		}
		return nil, false, err
	}
	return &customer, created, nil
}

// RecordSpend adds amount to the customer's total. Failures are logged and
// never reach the order transition that triggered them.
func (s *CustomerService) RecordSpend(ctx context.Context, email string, amount decimal.Decimal) {
	email = normalizeEmail(email)
	log := s.log.WithFields(logrus.Fields{"email": email, "amount": amount.String()})

	res := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"total_spent": gorm.Expr("total_spent + ?", amount),
			"updated_at":  s.now(),
		})
	if res.Error != nil {
		log.WithError(res.Error).Error("failed to update customer spending")
		return
	}
	if res.RowsAffected == 0 {
		log.Warn("no customer profile for completed order")
	}
}

func (s *CustomerService) List(ctx context.Context, q CustomerQuery) (*CustomerPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultCustomerLimit
	}
	if q.Limit > maxCustomerLimit {
		q.Limit = maxCustomerLimit
	}
	sortCol, ok := customerSortColumns[q.SortBy]
	if q.SortBy != "" && !ok {
		return nil, Invalid("sortBy", "must be one of: totalSpent visitCount lastVisitAt createdAt")
	}
	if !ok {
		sortCol = "created_at"
	}
	dir := "desc"
	if strings.EqualFold(q.Order, "asc") {
		dir = "asc"
	}

	db := s.db.WithContext(ctx)
	filter := func(tx *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(q.Search); search != "" {
			return tx.Where("LOWER(customers.email) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		return tx
	}

	var total int64
	if err := db.Model(&models.Customer{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, persistence(err, "customers")
	}

	rows := []CustomerSummary{}
	err := db.Model(&models.Customer{}).Scopes(filter).
		Select("customers.*, (SELECT COUNT(*) FROM orders WHERE orders.customer_id = customers.id) AS order_count").
		Order("customers." + sortCol + " " + dir).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, persistence(err, "customers")
	}

	return &CustomerPage{
		Data: rows,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}

// Get returns the customer with the ten most recent orders
func (s *CustomerService) Get(ctx context.Context, id string) (*CustomerSummary, error) {
	db := s.db.WithContext(ctx)
	var customer models.Customer
	err := db.Preload("Orders", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at desc").Limit(10)
	}).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, persistence(err, "customer")
	}

	var count int64
	if err := db.Model(&models.Order{}).Where("customer_id = ?", id).Count(&count).Error; err != nil {
		return nil, persistence(err, "orders")
	}
	return &CustomerSummary{Customer: customer, OrderCount: count}, nil
}
