package repository

import (
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

type PochaRepository interface {
	WithTx(tx *gorm.DB) PochaRepository
	Create(pocha *model.Pocha) error
	Update(pocha *model.Pocha) error
	FindByID(id uint) (*model.Pocha, error)
	FindLatest() (*model.Pocha, error)
}

type pochaRepository struct {
	db *gorm.DB
}

func NewPochaRepository(db *gorm.DB) PochaRepository {
	return &pochaRepository{db: db}
}

func (r *pochaRepository) WithTx(tx *gorm.DB) PochaRepository {
	return &pochaRepository{db: tx}
}

// Create inserts the pocha together with its Menus
func (r *pochaRepository) Create(pocha *model.Pocha) error {
	logger.Debug("Creating pocha in database", map[string]interface{}{
		"title":       pocha.Title,
		"menus_count": len(pocha.Menus),
	})

	if err := r.db.Create(pocha).Error; err != nil {
		logger.Error("Failed to create pocha in database", err, map[string]interface{}{
			"title": pocha.Title,
		})
		return err
	}

	logger.Debug("Pocha created in database", map[string]interface{}{
		"pocha_id": pocha.ID,
	})
	return nil
}

// Update saves the pocha row only; menus are merged by the caller
func (r *pochaRepository) Update(pocha *model.Pocha) error {
	err := r.db.Model(pocha).
		Select("title", "description", "start_date", "end_date").
		Updates(pocha).Error
	if err != nil {
		logger.Error("Failed to update pocha in database", err, map[string]interface{}{
			"pocha_id": pocha.ID,
		})
		return err
	}
	return nil
}

func (r *pochaRepository) FindByID(id uint) (*model.Pocha, error) {
	logger.Debug("Finding pocha by ID in database", map[string]interface{}{
		"pocha_id": id,
	})

	var pocha model.Pocha
	if err := r.db.First(&pocha, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find pocha by ID in database", err, map[string]interface{}{
				"pocha_id": id,
			})
		}
		return nil, err
	}
	return &pocha, nil
}

// FindLatest returns the most recently created pocha
func (r *pochaRepository) FindLatest() (*model.Pocha, error) {
	var pocha model.Pocha
	if err := r.db.Order("id DESC").First(&pocha).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find latest pocha in database", err)
		}
		return nil, err
	}
	return &pocha, nil
}
