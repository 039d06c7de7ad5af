package service

import (
	"errors"
	"time"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidPaymentResult = errors.New("payment result must be success or failure")

type PaymentResult string

const (
	PaymentSuccess PaymentResult = "success"
	PaymentFailure PaymentResult = "failure"
)

type PaymentOutcome struct {
	Result        PaymentResult
	OrderID       uint
	NewOrderItems []OrderItemView
	Restocked     bool
}

type PaymentService interface {
	ReserveStock(email string, pochaID uint) error
	ApplyResult(email string, pochaID uint, result PaymentResult) (*PaymentOutcome, error)
	ReleaseExpiredReservations(reservedBefore time.Time) (int, error)
}

type paymentService struct {
	userRepo  repository.UserRepository
	menuRepo  repository.MenuRepository
	orderRepo repository.OrderRepository
	emitter   EventEmitter
	db        *gorm.DB
	now       func() time.Time
}

func NewPaymentService(
	userRepo repository.UserRepository,
	menuRepo repository.MenuRepository,
	orderRepo repository.OrderRepository,
	emitter EventEmitter,
	db *gorm.DB,
) PaymentService {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &paymentService{
		userRepo:  userRepo,
		menuRepo:  menuRepo,
		orderRepo: orderRepo,
		emitter:   emitter,
		db:        db,
		now:       time.Now,
	}
}

// lockCart takes the user row lock and loads the unpaid order inside tx
func (s *paymentService) lockCart(tx *gorm.DB, email string, pochaID uint) (*model.Order, error) {
	if _, err := s.userRepo.WithTx(tx).FindByEmailForUpdate(email); err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	order, err := s.orderRepo.WithTx(tx).FindUnpaid(email, pochaID)
	if err != nil {
		return nil, orNotFound(err, ErrCartNotFound)
	}
	if len(order.OrderItems) == 0 {
		return nil, ErrCartEmpty
	}
	return order, nil
}

// ReserveStock decrements stock for the whole cart or nothing.
// Reserving an already reserved cart is a no-op.
func (s *paymentService) ReserveStock(email string, pochaID uint) error {
	logger.Info("Reserving stock for cart", map[string]interface{}{
		"email":    email,
		"pocha_id": pochaID,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockCart(tx, email, pochaID)
		if err != nil {
			return err
		}
		if order.IsReserved() {
			logger.Debug("Cart already reserved", map[string]interface{}{
				"order_id": order.ID,
			})
			return nil
		}
		return reserveOrderStock(s.menuRepo.WithTx(tx), s.orderRepo.WithTx(tx), order, s.now())
	})
	if err != nil {
		logger.Warn("Stock reservation failed", map[string]interface{}{
			"email":    email,
			"pocha_id": pochaID,
			"error":    err.Error(),
		})
	}
	return err
}

// ApplyResult finalizes a paid cart or compensates a failed payment.
// order-created is emitted only after the commit.
func (s *paymentService) ApplyResult(email string, pochaID uint, result PaymentResult) (*PaymentOutcome, error) {
	if result != PaymentSuccess && result != PaymentFailure {
		return nil, ErrInvalidPaymentResult
	}

	logger.Info("Applying payment result", map[string]interface{}{
		"email":    email,
		"pocha_id": pochaID,
		"result":   result,
	})

	outcome := &PaymentOutcome{Result: result}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockCart(tx, email, pochaID)
		if err != nil {
			return err
		}
		outcome.OrderID = order.ID

		menus := s.menuRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)

		if result == PaymentFailure {
			outcome.Restocked = order.IsReserved()
			return releaseReservation(menus, orders, order)
		}

		now := s.now()
		// 선점 없이 결제된 경우 여기서 선점, 부족하면 전체 롤백
		if !order.IsReserved() {
			if err := reserveOrderStock(menus, orders, order, now); err != nil {
				return err
			}
		}
		if err := orders.MarkPaid(order.ID, now); err != nil {
			return err
		}

		// 프리로드된 메뉴는 선점 이전 재고를 담고 있음
		if err := refreshMenus(menus, order); err != nil {
			return err
		}
		outcome.NewOrderItems = make([]OrderItemView, 0, len(order.OrderItems))
		for _, item := range order.OrderItems {
			outcome.NewOrderItems = append(outcome.NewOrderItems, newOrderItemView(item))
		}
		return nil
	})
	if err != nil {
		logger.Warn("Payment result rejected", map[string]interface{}{
			"email":    email,
			"pocha_id": pochaID,
			"result":   result,
			"error":    err.Error(),
		})
		return nil, err
	}

	if result == PaymentSuccess {
		payload := map[string]interface{}{"newOrderItems": outcome.NewOrderItems}
		if err := s.emitter.Emit(EventOrderCreated, payload); err != nil {
			logger.Error("Failed to emit order-created event", err, map[string]interface{}{
				"order_id": outcome.OrderID,
			})
		}
	}

	logger.Info("Payment result applied", map[string]interface{}{
		"order_id":  outcome.OrderID,
		"result":    result,
		"restocked": outcome.Restocked,
	})
	return outcome, nil
}

// ReleaseExpiredReservations gives back stock held by unpaid orders reserved
// before reservedBefore. Each order is released in its own transaction.
func (s *paymentService) ReleaseExpiredReservations(reservedBefore time.Time) (int, error) {
	expired, err := s.orderRepo.FindExpiredReservations(reservedBefore)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, candidate := range expired {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			order, err := s.lockCart(tx, candidate.Email, candidate.PochaID)
			if err != nil {
				return err
			}
			// 잠금 획득 전에 결제/변경되었을 수 있다
			if order.ID != candidate.ID || !order.IsReserved() || !order.ReservedAt.Before(reservedBefore) {
				return nil
			}
			if err := releaseReservation(s.menuRepo.WithTx(tx), s.orderRepo.WithTx(tx), order); err != nil {
				return err
			}
			released++
			return nil
		})
		if err != nil && !errors.Is(err, ErrCartNotFound) && !errors.Is(err, ErrCartEmpty) {
			logger.Error("Failed to release expired reservation", err, map[string]interface{}{
				"order_id": candidate.ID,
			})
		}
	}

	if released > 0 {
		logger.Info("Expired reservations released", map[string]interface{}{
			"released":        released,
			"reserved_before": reservedBefore,
		})
	}
	return released, nil
}
