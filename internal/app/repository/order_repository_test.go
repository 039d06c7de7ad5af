package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"gorm.io/gorm"
)

func TestOrderRepository_FindUnpaid(t *testing.T) {
	testDB := setupTestDB(t)
	pocha, regular, immediate := seedPocha(t, testDB)
	repo := NewOrderRepository(testDB)

	seedOrder(t, testDB, "jiwoo@umich.edu", pocha.ID, true, model.OrderItem{MenuID: regular.ID, Quantity: 1})
	cart := seedOrder(t, testDB, "jiwoo@umich.edu", pocha.ID, false,
		model.OrderItem{MenuID: regular.ID, Quantity: 1},
		model.OrderItem{MenuID: immediate.ID, Quantity: 3},
		model.OrderItem{MenuID: regular.ID, Quantity: 1},
	)

	order, err := repo.FindUnpaid("jiwoo@umich.edu", pocha.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, order.ID)
	require.Len(t, order.OrderItems, 3)
	require.NotNil(t, order.OrderItems[1].Menu)
	assert.Equal(t, "소주", order.OrderItems[1].Menu.NameKor)
	assert.Equal(t, map[uint]int{regular.ID: 2, immediate.ID: 3}, order.MenuQuantities())

	_, err = repo.FindUnpaid("other@umich.edu", pocha.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindUnpaidKeepsDeletedMenu(t *testing.T) {
	testDB := setupTestDB(t)
	pocha, regular, _ := seedPocha(t, testDB)
	repo := NewOrderRepository(testDB)

	seedOrder(t, testDB, "jiwoo@umich.edu", pocha.ID, false, model.OrderItem{MenuID: regular.ID, Quantity: 1})
	require.NoError(t, NewMenuRepository(testDB).Delete(regular.ID))

	order, err := repo.FindUnpaid("jiwoo@umich.edu", pocha.ID)
	require.NoError(t, err)
	require.NotNil(t, order.OrderItems[0].Menu)
	assert.Equal(t, "떡볶이", order.OrderItems[0].Menu.NameKor)
}

func TestOrderRepository_ReservationLifecycle(t *testing.T) {
	testDB := setupTestDB(t)
	pocha, regular, _ := seedPocha(t, testDB)
	repo := NewOrderRepository(testDB)

	order := seedOrder(t, testDB, "jiwoo@umich.edu", pocha.ID, false, model.OrderItem{MenuID: regular.ID, Quantity: 1})
	reservedAt := time.Date(2026, 4, 18, 18, 0, 0, 0, time.UTC)

	require.NoError(t, repo.MarkReserved(order.ID, reservedAt))

	expired, err := repo.FindExpiredReservations(reservedAt.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.True(t, expired[0].IsReserved())
	assert.Len(t, expired[0].OrderItems, 1)

	expired, err = repo.FindExpiredReservations(reservedAt)
	require.NoError(t, err)
	assert.Empty(t, expired)

	require.NoError(t, repo.ClearReservation(order.ID))
	cart, err := repo.FindUnpaid("jiwoo@umich.edu", pocha.ID)
	require.NoError(t, err)
	assert.False(t, cart.IsReserved())

	require.NoError(t, repo.MarkPaid(order.ID, reservedAt))
	_, err = repo.FindUnpaid("jiwoo@umich.edu", pocha.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_DeleteRemovesItems(t *testing.T) {
	testDB := setupTestDB(t)
	pocha, regular, _ := seedPocha(t, testDB)
	repo := NewOrderRepository(testDB)

	order := seedOrder(t, testDB, "jiwoo@umich.edu", pocha.ID, false,
		model.OrderItem{MenuID: regular.ID, Quantity: 1},
		model.OrderItem{MenuID: regular.ID, Quantity: 1},
	)

	require.NoError(t, repo.Delete(order.ID))

	var count int64
	require.NoError(t, testDB.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
	_, err := repo.FindUnpaid("jiwoo@umich.edu", pocha.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
