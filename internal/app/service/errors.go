package service

import (
	"errors"
	"fmt"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"gorm.io/gorm"
)

// 여러 서비스가 공유하는 조회 실패 에러
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrPochaNotFound = errors.New("pocha not found")
	ErrMenuNotFound  = errors.New("menu not found")
	ErrCartNotFound  = errors.New("no unpaid order for this pocha")

	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockShortageError names the first menu that could not be reserved
type StockShortageError struct {
	Menu      model.Menu
	Requested int
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for menu %d: requested %d, available %d", e.Menu.ID, e.Requested, e.Menu.Stock)
}

func (e *StockShortageError) Unwrap() error {
	return ErrInsufficientStock
}

// orNotFound maps gorm.ErrRecordNotFound to the given sentinel
func orNotFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
