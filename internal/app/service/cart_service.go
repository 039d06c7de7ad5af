package service

import (
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be non-zero and within the cart limit")
	ErrCartItemMismatch = errors.New("cart does not hold the requested items")
	ErrCartEmpty        = errors.New("cart is empty")
)

// MaxCartQuantity 한 메뉴당 장바구니에 담을 수 있는 최대 수량
const MaxCartQuantity = 50

type CartAction string

const (
	CartItemsAdded   CartAction = "added"
	CartItemsRemoved CartAction = "removed"
)

// CartEntry 메뉴별 합산 수량
type CartEntry struct {
	Menu     model.Menu `json:"menu"`
	Quantity int        `json:"quantity"`
}

type CheckoutInfo struct {
	Amount           float64 `json:"amount"`
	AgeCheckRequired bool    `json:"ageCheckRequired"`
}

type CartService interface {
	GetCart(email string, pochaID uint) (map[uint]CartEntry, error)
	ModifyCart(email string, pochaID, menuID uint, quantity int) (CartAction, error)
	GetCheckoutInfo(email string, pochaID uint) (*CheckoutInfo, error)
}

type cartService struct {
	userRepo      repository.UserRepository
	pochaRepo     repository.PochaRepository
	menuRepo      repository.MenuRepository
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	db            *gorm.DB
}

func NewCartService(
	userRepo repository.UserRepository,
	pochaRepo repository.PochaRepository,
	menuRepo repository.MenuRepository,
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	db *gorm.DB,
) CartService {
	return &cartService{
		userRepo:      userRepo,
		pochaRepo:     pochaRepo,
		menuRepo:      menuRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		db:            db,
	}
}

// GetCart returns an empty map when the user has no unpaid order
func (s *cartService) GetCart(email string, pochaID uint) (map[uint]CartEntry, error) {
	cart := make(map[uint]CartEntry)

	order, err := s.orderRepo.FindUnpaid(email, pochaID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cart, nil
	}
	if err != nil {
		return nil, err
	}

	for _, item := range order.OrderItems {
		entry, ok := cart[item.MenuID]
		if !ok && item.Menu != nil {
			entry.Menu = *item.Menu
		}
		entry.Quantity += item.Quantity
		cart[item.MenuID] = entry
	}

	logger.Debug("Cart loaded", map[string]interface{}{
		"email":    email,
		"pocha_id": pochaID,
		"menus":    len(cart),
	})
	return cart, nil
}

// ModifyCart adds (quantity > 0) or removes (quantity < 0) units of a menu.
// The whole mutation is one transaction holding the user's row lock.
func (s *cartService) ModifyCart(email string, pochaID, menuID uint, quantity int) (CartAction, error) {
	if quantity == 0 || quantity > MaxCartQuantity || quantity < -MaxCartQuantity {
		return "", ErrInvalidQuantity
	}

	logger.Info("Modifying cart", map[string]interface{}{
		"email":    email,
		"pocha_id": pochaID,
		"menu_id":  menuID,
		"quantity": quantity,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		menus := s.menuRepo.WithTx(tx)
		orders := s.orderRepo.WithTx(tx)
		items := s.orderItemRepo.WithTx(tx)

		if _, err := users.FindByEmailForUpdate(email); err != nil {
			return orNotFound(err, ErrUserNotFound)
		}
		if _, err := s.pochaRepo.WithTx(tx).FindByID(pochaID); err != nil {
			return orNotFound(err, ErrPochaNotFound)
		}
		menu, err := menus.FindByID(menuID)
		if err != nil {
			return orNotFound(err, ErrMenuNotFound)
		}
		if menu.PochaID != pochaID {
			return ErrMenuNotFound
		}

		order, err := orders.FindUnpaid(email, pochaID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity < 0 {
				return ErrCartItemMismatch
			}
			order = &model.Order{Email: email, PochaID: pochaID}
			if err := orders.Create(order); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// 담긴 내용이 바뀌면 선점 재고는 무효
			if err := releaseReservation(menus, orders, order); err != nil {
				return err
			}
		}

		if quantity > 0 {
			return addCartItems(items, order.ID, menu, quantity)
		}
		if err := removeCartItems(items, order.ID, menu, -quantity); err != nil {
			return err
		}
		return deleteOrderIfEmpty(orders, items, order.ID)
	})
	if err != nil {
		logger.Warn("Cart modification rejected", map[string]interface{}{
			"email":    email,
			"pocha_id": pochaID,
			"menu_id":  menuID,
			"quantity": quantity,
			"error":    err.Error(),
		})
		return "", err
	}

	if quantity > 0 {
		return CartItemsAdded, nil
	}
	return CartItemsRemoved, nil
}

// addCartItems stores one row per unit for regular menus and
// a single aggregated row for immediate-prep menus
func addCartItems(items repository.OrderItemRepository, orderID uint, menu *model.Menu, quantity int) error {
	held, err := items.SumQuantityByMenu(orderID, menu.ID)
	if err != nil {
		return err
	}
	if held+quantity > MaxCartQuantity {
		return ErrInvalidQuantity
	}

	if !menu.IsImmediatePrep {
		rows := make([]model.OrderItem, quantity)
		for i := range rows {
			rows[i] = model.OrderItem{OrderID: orderID, MenuID: menu.ID, Quantity: 1, Status: model.StatusPending}
		}
		return items.CreateBatch(rows)
	}

	existing, err := items.FindLatestPending(orderID, menu.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return items.CreateBatch([]model.OrderItem{
			{OrderID: orderID, MenuID: menu.ID, Quantity: quantity, Status: model.StatusPending},
		})
	}
	if err != nil {
		return err
	}
	return items.UpdateQuantity(existing.ID, existing.Quantity+quantity)
}

func removeCartItems(items repository.OrderItemRepository, orderID uint, menu *model.Menu, count int) error {
	if menu.IsImmediatePrep {
		row, err := items.FindLatestPending(orderID, menu.ID)
		if err != nil {
			return orNotFound(err, ErrCartItemMismatch)
		}
		switch {
		case count > row.Quantity:
			return ErrCartItemMismatch
		case count == row.Quantity:
			return items.Delete(row.ID)
		default:
			return items.UpdateQuantity(row.ID, row.Quantity-count)
		}
	}

	if count == 1 {
		row, err := items.FindLatestPending(orderID, menu.ID)
		if err != nil {
			return orNotFound(err, ErrCartItemMismatch)
		}
		return items.Delete(row.ID)
	}

	// 여러 개 삭제는 해당 메뉴 전체 삭제만 허용, 개수가 다르면 롤백
	deleted, err := items.DeleteByMenu(orderID, menu.ID)
	if err != nil {
		return err
	}
	if deleted != int64(count) {
		return ErrCartItemMismatch
	}
	return nil
}

func deleteOrderIfEmpty(orders repository.OrderRepository, items repository.OrderItemRepository, orderID uint) error {
	count, err := items.CountByOrder(orderID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return orders.Delete(orderID)
}

func (s *cartService) GetCheckoutInfo(email string, pochaID uint) (*CheckoutInfo, error) {
	order, err := s.orderRepo.FindUnpaid(email, pochaID)
	if err != nil {
		return nil, orNotFound(err, ErrCartNotFound)
	}
	if len(order.OrderItems) == 0 {
		return nil, ErrCartEmpty
	}

	info := &CheckoutInfo{}
	for _, item := range order.OrderItems {
		if item.Menu == nil {
			continue
		}
		info.Amount += item.Menu.Price * float64(item.Quantity)
		if item.Menu.AgeCheckRequired {
			info.AgeCheckRequired = true
		}
	}
	return info, nil
}
