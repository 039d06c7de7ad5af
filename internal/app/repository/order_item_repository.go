package repository

import (
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderItemRepository interface {
	WithTx(tx *gorm.DB) OrderItemRepository
	CreateBatch(items []model.OrderItem) error
	FindByID(id uint) (*model.OrderItem, error)
	FindLatestPending(orderID, menuID uint) (*model.OrderItem, error)
	UpdateQuantity(id uint, quantity int) error
	Delete(id uint) error
	DeleteByMenu(orderID, menuID uint) (int64, error)
	CountByOrder(orderID uint) (int64, error)
	SumQuantityByMenu(orderID, menuID uint) (int, error)
	TransitionStatus(id uint, from, to model.OrderItemStatus) (bool, error)
	FindPaidByPocha(pochaID uint, statuses []model.OrderItemStatus) ([]model.OrderItem, error)
	FindPaidByUser(email string, pochaID uint, statuses []model.OrderItemStatus) ([]model.OrderItem, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) WithTx(tx *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: tx}
}

func (r *orderItemRepository) CreateBatch(items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	logger.Debug("Creating order items in database", map[string]interface{}{
		"order_id": items[0].OrderID,
		"menu_id":  items[0].MenuID,
		"count":    len(items),
	})

	if err := r.db.Omit("Order", "Menu").CreateInBatches(&items, 100).Error; err != nil {
		logger.Error("Failed to create order items in database", err, map[string]interface{}{
			"order_id": items[0].OrderID,
			"count":    len(items),
		})
		return err
	}
	return nil
}

// FindByID loads the item with its order and menu
func (r *orderItemRepository) FindByID(id uint) (*model.OrderItem, error) {
	logger.Debug("Finding order item by ID in database", map[string]interface{}{
		"order_item_id": id,
	})

	var item model.OrderItem
	err := r.db.
		Preload("Order").
		Preload("Menu", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&item, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order item by ID in database", err, map[string]interface{}{
				"order_item_id": id,
			})
		}
		return nil, err
	}
	return &item, nil
}

// FindLatestPending returns the most recently inserted pending row of a menu in the order
func (r *orderItemRepository) FindLatestPending(orderID, menuID uint) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.
		Where("order_id = ? AND menu_id = ? AND status = ?", orderID, menuID, model.StatusPending).
		Order("id DESC").
		First(&item).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find pending order item in database", err, map[string]interface{}{
				"order_id": orderID,
				"menu_id":  menuID,
			})
		}
		return nil, err
	}
	return &item, nil
}

func (r *orderItemRepository) UpdateQuantity(id uint, quantity int) error {
	if err := r.db.Model(&model.OrderItem{}).Where("id = ?", id).Update("quantity", quantity).Error; err != nil {
		logger.Error("Failed to update order item quantity in database", err, map[string]interface{}{
			"order_item_id": id,
			"quantity":      quantity,
		})
		return err
	}
	return nil
}

func (r *orderItemRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.OrderItem{}, id).Error; err != nil {
		logger.Error("Failed to delete order item in database", err, map[string]interface{}{
			"order_item_id": id,
		})
		return err
	}
	return nil
}

// DeleteByMenu removes every row of menuID in the order and reports how many went
func (r *orderItemRepository) DeleteByMenu(orderID, menuID uint) (int64, error) {
	result := r.db.Where("order_id = ? AND menu_id = ?", orderID, menuID).Delete(&model.OrderItem{})
	if result.Error != nil {
		logger.Error("Failed to delete order items by menu in database", result.Error, map[string]interface{}{
			"order_id": orderID,
			"menu_id":  menuID,
		})
		return 0, result.Error
	}

	logger.Debug("Order items deleted by menu in database", map[string]interface{}{
		"order_id": orderID,
		"menu_id":  menuID,
		"deleted":  result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *orderItemRepository) CountByOrder(orderID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		logger.Error("Failed to count order items in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return 0, err
	}
	return count, nil
}

// SumQuantityByMenu returns the total units of menuID held by the order
func (r *orderItemRepository) SumQuantityByMenu(orderID, menuID uint) (int, error) {
	var total int
	err := r.db.Model(&model.OrderItem{}).
		Where("order_id = ? AND menu_id = ?", orderID, menuID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		logger.Error("Failed to sum order item quantity in database", err, map[string]interface{}{
			"order_id": orderID,
			"menu_id":  menuID,
		})
		return 0, err
	}
	return total, nil
}

// TransitionStatus moves the item from -> to. false means another writer changed it first.
func (r *orderItemRepository) TransitionStatus(id uint, from, to model.OrderItemStatus) (bool, error) {
	result := r.db.Model(&model.OrderItem{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		logger.Error("Failed to update order item status in database", result.Error, map[string]interface{}{
			"order_item_id": id,
			"from":          from,
			"to":            to,
		})
		return false, result.Error
	}

	logger.Debug("Order item status transition in database", map[string]interface{}{
		"order_item_id": id,
		"from":          from,
		"to":            to,
		"applied":       result.RowsAffected == 1,
	})
	return result.RowsAffected == 1, nil
}

func (r *orderItemRepository) FindPaidByPocha(pochaID uint, statuses []model.OrderItemStatus) ([]model.OrderItem, error) {
	return r.findPaid(r.db.Where("orders.pocha_id = ?", pochaID), statuses)
}

func (r *orderItemRepository) FindPaidByUser(email string, pochaID uint, statuses []model.OrderItemStatus) ([]model.OrderItem, error) {
	return r.findPaid(r.db.Where("orders.pocha_id = ? AND orders.email = ?", pochaID, email), statuses)
}

// findPaid lists items of paid orders in the given statuses, oldest first
func (r *orderItemRepository) findPaid(q *gorm.DB, statuses []model.OrderItemStatus) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := q.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.is_paid = ? AND order_items.status IN ?", true, statuses).
		Preload("Order").
		Preload("Menu", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("order_items.id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find paid order items in database", err, map[string]interface{}{
			"statuses": statuses,
		})
		return nil, err
	}

	logger.Debug("Paid order items found in database", map[string]interface{}{
		"statuses": statuses,
		"count":    len(items),
	})
	return items, nil
}
