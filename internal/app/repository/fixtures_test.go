package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/db"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB
}

// seedPocha creates a pocha with one regular and one immediate-prep menu
func seedPocha(t *testing.T, testDB *gorm.DB) (*model.Pocha, *model.Menu, *model.Menu) {
	t.Helper()
	start := time.Date(2026, 4, 18, 17, 0, 0, 0, time.UTC)
	pocha := &model.Pocha{
		Title:       "KISA 포차",
		Description: "spring pocha",
		StartDate:   start,
		EndDate:     start.Add(6 * time.Hour),
	}
	require.NoError(t, testDB.Create(pocha).Error)

	regular := &model.Menu{PochaID: pocha.ID, NameKor: "떡볶이", NameEng: "Tteokbokki", Category: "Food", Price: 8, Stock: 10}
	immediate := &model.Menu{PochaID: pocha.ID, NameKor: "소주", NameEng: "Soju", Category: "Drink", Price: 6, Stock: 5, IsImmediatePrep: true, AgeCheckRequired: true}
	require.NoError(t, testDB.Create(regular).Error)
	require.NoError(t, testDB.Create(immediate).Error)
	return pocha, regular, immediate
}

func seedOrder(t *testing.T, testDB *gorm.DB, email string, pochaID uint, paid bool, items ...model.OrderItem) *model.Order {
	t.Helper()
	order := &model.Order{Email: email, PochaID: pochaID, IsPaid: paid}
	require.NoError(t, testDB.Omit("OrderItems").Create(order).Error)
	for i := range items {
		items[i].OrderID = order.ID
		if items[i].Status == "" {
			items[i].Status = model.StatusPending
		}
		require.NoError(t, testDB.Omit("Order", "Menu").Create(&items[i]).Error)
	}
	order.OrderItems = items
	return order
}
