package repository

import (
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(user *model.User) error
	FindByEmail(email string) (*model.User, error)
	FindByEmailForUpdate(email string) (*model.User, error)
	FindByEmails(emails []string) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	return r.findByEmail(r.db, email)
}

// FindByEmailForUpdate locks the user row until the surrounding transaction ends.
// Cart mutations take this lock to serialize per-user cart changes.
func (r *userRepository) FindByEmailForUpdate(email string) (*model.User, error) {
	return r.findByEmail(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), email)
}

func (r *userRepository) findByEmail(q *gorm.DB, email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := q.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find user by email in database", err, map[string]interface{}{
				"email": email,
			})
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmails(emails []string) ([]model.User, error) {
	var users []model.User
	if len(emails) == 0 {
		return users, nil
	}
	if err := r.db.Where("email IN ?", emails).Find(&users).Error; err != nil {
		logger.Error("Failed to find users by emails in database", err, map[string]interface{}{
			"count": len(emails),
		})
		return nil, err
	}
	return users, nil
}
