package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pypln-web/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	return r.firstBy("username", username)
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	return r.firstBy("email", email)
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	return r.firstBy("id", id)
}

// firstBy returns nil, nil when no user matches.
func (r *UserRepository) firstBy(column string, value any) (*model.User, error) {
	var user model.User
	if err := r.db.Where(column+" = ?", value).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by %s failed: %w", column, err)
	}
	return &user, nil
}
