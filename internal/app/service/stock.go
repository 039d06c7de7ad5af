package service

import (
	"errors"
	"sort"
	"time"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

// sortedMenuIDs gives a fixed lock order across concurrent reservations
func sortedMenuIDs(quantities map[uint]int) []uint {
	ids := make([]uint, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// reserveOrderStock decrements stock for every menu in the order and stamps reservedAt.
// Must run inside a transaction: a shortage returns *StockShortageError after
// earlier menus were already decremented, and the caller rolls back.
func reserveOrderStock(menus repository.MenuRepository, orders repository.OrderRepository, order *model.Order, now time.Time) error {
	quantities := order.MenuQuantities()
	for _, menuID := range sortedMenuIDs(quantities) {
		qty := quantities[menuID]
		ok, err := menus.ReserveStock(menuID, qty)
		if err != nil {
			return err
		}
		if !ok {
			return shortage(menus, order, menuID, qty)
		}
	}

	if err := orders.MarkReserved(order.ID, now); err != nil {
		return err
	}
	order.ReservedAt = &now

	logger.Info("Stock reserved for order", map[string]interface{}{
		"order_id": order.ID,
		"menus":    len(quantities),
	})
	return nil
}

func shortage(menus repository.MenuRepository, order *model.Order, menuID uint, qty int) error {
	if current, err := menus.FindByID(menuID); err == nil {
		return &StockShortageError{Menu: *current, Requested: qty}
	}
	for _, item := range order.OrderItems {
		if item.MenuID == menuID && item.Menu != nil {
			return &StockShortageError{Menu: *item.Menu, Requested: qty}
		}
	}
	return &StockShortageError{Menu: model.Menu{ID: menuID}, Requested: qty}
}

// refreshMenus reloads each item's menu so views carry post-reservation stock.
// Soft-deleted menus keep their preloaded copy.
func refreshMenus(menus repository.MenuRepository, order *model.Order) error {
	fresh := make(map[uint]*model.Menu)
	for i := range order.OrderItems {
		item := &order.OrderItems[i]
		menu, ok := fresh[item.MenuID]
		if !ok {
			loaded, err := menus.FindByID(item.MenuID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				loaded = item.Menu
			case err != nil:
				return err
			}
			fresh[item.MenuID] = loaded
			menu = loaded
		}
		if menu != nil {
			item.Menu = menu
		}
	}
	return nil
}

// releaseReservation gives reserved stock back and clears reservedAt.
// No-op for orders that hold no reservation.
func releaseReservation(menus repository.MenuRepository, orders repository.OrderRepository, order *model.Order) error {
	if !order.IsReserved() {
		return nil
	}

	quantities := order.MenuQuantities()
	for _, menuID := range sortedMenuIDs(quantities) {
		if err := menus.RestoreStock(menuID, quantities[menuID]); err != nil {
			return err
		}
	}

	if err := orders.ClearReservation(order.ID); err != nil {
		return err
	}
	order.ReservedAt = nil

	logger.Info("Stock reservation released", map[string]interface{}{
		"order_id": order.ID,
		"menus":    len(quantities),
	})
	return nil
}
