package repository

import (
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrNonPositiveQuantity 재고 증감 수량은 1 이상이어야 함
var ErrNonPositiveQuantity = errors.New("stock quantity must be positive")

type MenuRepository interface {
	WithTx(tx *gorm.DB) MenuRepository
	Create(menu *model.Menu) error
	CreateBatch(menus []model.Menu) error
	Update(menu *model.Menu) error
	Delete(id uint) error
	FindByID(id uint) (*model.Menu, error)
	FindByPochaID(pochaID uint) ([]model.Menu, error)
	ReserveStock(menuID uint, quantity int) (bool, error)
	RestoreStock(menuID uint, quantity int) error
	SetStock(menuID uint, stock int) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) WithTx(tx *gorm.DB) MenuRepository {
	return &menuRepository{db: tx}
}

func (r *menuRepository) Create(menu *model.Menu) error {
	if err := r.db.Create(menu).Error; err != nil {
		logger.Error("Failed to create menu in database", err, map[string]interface{}{
			"pocha_id": menu.PochaID,
			"name_kor": menu.NameKor,
		})
		return err
	}
	return nil
}

func (r *menuRepository) CreateBatch(menus []model.Menu) error {
	if len(menus) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(menus, 100).Error; err != nil {
		logger.Error("Failed to create menus in database", err, map[string]interface{}{
			"count": len(menus),
		})
		return err
	}
	return nil
}

// Update writes every editable column, zero values included
func (r *menuRepository) Update(menu *model.Menu) error {
	err := r.db.Model(menu).
		Select("name_kor", "name_eng", "category", "price", "stock", "is_immediate_prep", "age_check_required", "image_url").
		Updates(menu).Error
	if err != nil {
		logger.Error("Failed to update menu in database", err, map[string]interface{}{
			"menu_id": menu.ID,
		})
		return err
	}
	return nil
}

// Delete soft-deletes so paid order items keep their menu detail
func (r *menuRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Menu{}, id).Error; err != nil {
		logger.Error("Failed to delete menu in database", err, map[string]interface{}{
			"menu_id": id,
		})
		return err
	}
	return nil
}

func (r *menuRepository) FindByID(id uint) (*model.Menu, error) {
	logger.Debug("Finding menu by ID in database", map[string]interface{}{
		"menu_id": id,
	})

	var menu model.Menu
	if err := r.db.First(&menu, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find menu by ID in database", err, map[string]interface{}{
				"menu_id": id,
			})
		}
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) FindByPochaID(pochaID uint) ([]model.Menu, error) {
	var menus []model.Menu
	if err := r.db.Where("pocha_id = ?", pochaID).Order("id ASC").Find(&menus).Error; err != nil {
		logger.Error("Failed to find menus by pocha ID in database", err, map[string]interface{}{
			"pocha_id": pochaID,
		})
		return nil, err
	}

	logger.Debug("Menus found by pocha ID in database", map[string]interface{}{
		"pocha_id": pochaID,
		"count":    len(menus),
	})
	return menus, nil
}

// ReserveStock decrements stock only if enough remains. false means insufficient.
// The WHERE guard keeps stock from going negative under concurrent reservations.
func (r *menuRepository) ReserveStock(menuID uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, ErrNonPositiveQuantity
	}

	logger.Debug("Reserving menu stock in database", map[string]interface{}{
		"menu_id":  menuID,
		"quantity": quantity,
	})

	result := r.db.Model(&model.Menu{}).
		Where("id = ? AND stock >= ?", menuID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		logger.Error("Failed to reserve menu stock in database", result.Error, map[string]interface{}{
			"menu_id":  menuID,
			"quantity": quantity,
		})
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		logger.Debug("Insufficient menu stock", map[string]interface{}{
			"menu_id":  menuID,
			"quantity": quantity,
		})
		return false, nil
	}
	return true, nil
}

// RestoreStock adds quantity back, including to soft-deleted menus
func (r *menuRepository) RestoreStock(menuID uint, quantity int) error {
	if quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	err := r.db.Unscoped().Model(&model.Menu{}).
		Where("id = ?", menuID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
	if err != nil {
		logger.Error("Failed to restore menu stock in database", err, map[string]interface{}{
			"menu_id":  menuID,
			"quantity": quantity,
		})
		return err
	}
	return nil
}

// SetStock overwrites stock. Returns gorm.ErrRecordNotFound when the menu does not exist.
func (r *menuRepository) SetStock(menuID uint, stock int) error {
	result := r.db.Model(&model.Menu{}).Where("id = ?", menuID).Update("stock", stock)
	if result.Error != nil {
		logger.Error("Failed to set menu stock in database", result.Error, map[string]interface{}{
			"menu_id": menuID,
			"stock":   stock,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
