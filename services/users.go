package services

import (
	"context"

	"restaurant-api/models"

	"golang.org/x/crypto/bcrypt"
)

type CreateUserInput struct {
	Email       string             `json:"email" validate:"required,email"`
	Password    string             `json:"password" validate:"required,min=8,notblank_min8"`
	Role        models.UserRole    `json:"role" validate:"required,oneof=admin waiter chef"`
	Permissions models.StringArray `json:"permissions"`
}

// UpdateUserInput is applied by an admin, or by the user themself for isOnline only
type UpdateUserInput struct {
	Email       *string            `json:"email" validate:"omitempty,email"`
	Password    *string            `json:"password" validate:"omitempty,min=8,notblank_min8"`
	Role        *models.UserRole   `json:"role" validate:"omitempty,oneof=admin waiter chef"`
	Permissions models.StringArray `json:"permissions"`
	IsOnline    *bool              `json:"isOnline"`
}

type UserService struct {
	base
}

// HashPassword uses bcrypt at its default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate checks credentials and marks the user online
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Limit(1).Find(&user).Error
	if err != nil {
		return nil, persistence(err, "user")
	}
	if user.ID == "" {
		return nil, Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, Unauthorized("invalid email or password")
	}
	if err := s.SetOnline(ctx, user.ID, true); err != nil {
		return nil, err
	}
	user.IsOnline = true
	return &user, nil
}

func (s *UserService) SetOnline(ctx context.Context, id string, online bool) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_online", online).Error
	return persistence(err, "user")
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, persistence(err, "user")
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	q := s.db.WithContext(ctx).Order("created_at asc")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	users := []models.User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, persistence(err, "users")
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, newError(KindPersistence, err, "failed to hash password")
	}
	user := &models.User{
		Email:       in.Email,
		Password:    hash,
		Role:        in.Role,
		Permissions: in.Permissions,
		CreatedAt:   s.now(),
	}
	if user.Permissions == nil {
		user.Permissions = models.StringArray{}
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("email already in use")
		}
		return nil, persistence(err, "user")
	}
	return user, nil
}

// Update edits a user. Admins may change everything; any other actor may
// only toggle their own online flag.
func (s *UserService) Update(ctx context.Context, actor *models.User, id string, in UpdateUserInput) (*models.User, error) {
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := check(in); err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if actor.ID != id {
			return nil, Forbidden("you can only update your own status")
		}
		if in.Email != nil || in.Password != nil || in.Role != nil || in.Permissions != nil {
			return nil, Forbidden("only administrators can change account details")
		}
	}

	updates := map[string]interface{}{}
	if in.Email != nil {
		if err := s.ensureEmailFree(ctx, *in.Email, id); err != nil {
			return nil, err
		}
		updates["email"] = *in.Email
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, newError(KindPersistence, err, "failed to hash password")
		}
		updates["password"] = hash
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}
	if in.Permissions != nil {
		updates["permissions"] = in.Permissions
	}
	if in.IsOnline != nil {
		updates["is_online"] = *in.IsOnline
	}

	if len(updates) > 0 {
		updates["updated_at"] = s.now()
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, persistence(res.Error, "user")
		}
		if res.RowsAffected == 0 {
			return nil, NotFound("user not found")
		}
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) error {
	if actor != nil && actor.ID == id {
		return Conflict("you cannot delete your own account")
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return persistence(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return NotFound("user not found")
	}
	return nil
}

// EnsureUser creates the account when the email is not registered yet
func (s *UserService) EnsureUser(ctx context.Context, in CreateUserInput) (*models.User, bool, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).Limit(1).Find(&existing).Error
	if err != nil {
		return nil, false, persistence(err, "user")
	}
	if existing.ID != "" {
		return &existing, false, nil
	}
	user, err := s.Create(ctx, in)
	return user, err == nil, err
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return persistence(err, "users")
	}
	if n > 0 {
		return Conflict("email already in use")
	}
	return nil
}
