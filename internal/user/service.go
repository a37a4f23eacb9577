package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCarePath/carepath/utils"
)

// ErrUserNotFound is returned when the referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when registering a user with an email already
// in use.
var ErrDuplicateEmail = errors.New("email already registered")

// Service provides user registration and lookup.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func validRole(role Role) bool {
	switch role {
	case RoleDoctor, RoleNurse, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// CreateUser registers a new user. Emails are unique.
func (s *Service) CreateUser(ctx context.Context, createReq *CreateUserDTO) (*User, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.Email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}
	if !validRole(createReq.Role) {
		return nil, fmt.Errorf("invalid role %q", createReq.Role)
	}

	var existingCount int64
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ?", createReq.Email).
		Count(&existingCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existingCount > 0 {
		return nil, ErrDuplicateEmail
	}

	user := &User{
		FirstName: createReq.FirstName,
		LastName:  createReq.LastName,
		Email:     createReq.Email,
		Role:      createReq.Role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user.
func (s *Service) GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user %s: %w", userID, result.Error)
	}
	return &user, nil
}

// ListUsers retrieves users, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role Role, offset, limit int) ([]User, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(&offset, &limit)

	query := s.db.WithContext(ctx).Model(&User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []User
	result := query.
		Order("last_name ASC, first_name ASC").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", result.Error)
	}
	return users, nil
}
