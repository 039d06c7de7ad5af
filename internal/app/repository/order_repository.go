package repository

import (
	"errors"
	"time"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	Delete(id uint) error
	FindUnpaid(email string, pochaID uint) (*model.Order, error)
	FindExpiredReservations(reservedBefore time.Time) ([]model.Order, error)
	MarkReserved(id uint, at time.Time) error
	ClearReservation(id uint) error
	MarkPaid(id uint, at time.Time) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

// withItems preloads items in insertion order with their menu, soft-deleted menus included
func withItems(q *gorm.DB) *gorm.DB {
	return q.
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		Preload("OrderItems.Menu", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		})
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"email":    order.Email,
		"pocha_id": order.PochaID,
	})

	if err := r.db.Omit("OrderItems").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"email":    order.Email,
			"pocha_id": order.PochaID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

// Delete removes the order and any remaining items
func (r *orderRepository) Delete(id uint) error {
	if err := r.db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		logger.Error("Failed to delete order items in database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	if err := r.db.Delete(&model.Order{}, id).Error; err != nil {
		logger.Error("Failed to delete order in database", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}

	logger.Debug("Order deleted from database", map[string]interface{}{
		"order_id": id,
	})
	return nil
}

// FindUnpaid returns the user's cart for the pocha with items and menus
func (r *orderRepository) FindUnpaid(email string, pochaID uint) (*model.Order, error) {
	logger.Debug("Finding unpaid order in database", map[string]interface{}{
		"email":    email,
		"pocha_id": pochaID,
	})

	var order model.Order
	err := withItems(r.db).
		Where("email = ? AND pocha_id = ? AND is_paid = ?", email, pochaID, false).
		Order("id ASC").
		First(&order).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find unpaid order in database", err, map[string]interface{}{
				"email":    email,
				"pocha_id": pochaID,
			})
		}
		return nil, err
	}

	logger.Debug("Unpaid order found in database", map[string]interface{}{
		"order_id":    order.ID,
		"items_count": len(order.OrderItems),
		"reserved":    order.IsReserved(),
	})
	return &order, nil
}

// FindExpiredReservations lists unpaid orders holding stock since before reservedBefore
func (r *orderRepository) FindExpiredReservations(reservedBefore time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := withItems(r.db).
		Where("is_paid = ? AND reserved_at IS NOT NULL AND reserved_at < ?", false, reservedBefore).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find expired reservations in database", err, map[string]interface{}{
			"reserved_before": reservedBefore,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) MarkReserved(id uint, at time.Time) error {
	return r.updateColumns(id, map[string]interface{}{"reserved_at": at}, "mark reserved")
}

func (r *orderRepository) ClearReservation(id uint) error {
	return r.updateColumns(id, map[string]interface{}{"reserved_at": nil}, "clear reservation")
}

func (r *orderRepository) MarkPaid(id uint, at time.Time) error {
	return r.updateColumns(id, map[string]interface{}{"is_paid": true, "paid_at": at}, "mark paid")
}

func (r *orderRepository) updateColumns(id uint, values map[string]interface{}, action string) error {
	result := r.db.Model(&model.Order{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		logger.Error("Failed to update order in database", result.Error, map[string]interface{}{
			"order_id": id,
			"action":   action,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Order updated in database", map[string]interface{}{
		"order_id": id,
		"action":   action,
	})
	return nil
}
