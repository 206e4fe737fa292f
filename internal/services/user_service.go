package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/authz"
	"github.com/docregistry/internal/db/models"
)

type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{
		db:     db,
		logger: logger.With(zap.String("service", "user_service")),
	}
}

// GetPrincipal resolves the authorization-relevant fields of a user.
func (us *UserService) GetPrincipal(ctx context.Context, id uint) (authz.Principal, error) {
	var user models.User
	if err := us.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Principal{}, ErrNotFound
		}
		return authz.Principal{}, err
	}
	return user.Principal(), nil
}

func (us *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := us.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (us *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := us.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
