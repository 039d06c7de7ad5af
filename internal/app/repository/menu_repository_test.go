package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"gorm.io/gorm"
)

func TestMenuRepository_ReserveStock(t *testing.T) {
	testDB := setupTestDB(t)
	_, regular, _ := seedPocha(t, testDB)
	repo := NewMenuRepository(testDB)

	tests := []struct {
		name      string
		quantity  int
		wantOK    bool
		wantStock int
	}{
		{name: "partial", quantity: 4, wantOK: true, wantStock: 6},
		{name: "exactly remaining", quantity: 6, wantOK: true, wantStock: 0},
		{name: "exhausted", quantity: 1, wantOK: false, wantStock: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := repo.ReserveStock(regular.ID, tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)

			menu, err := repo.FindByID(regular.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, menu.Stock)
		})
	}
}

func TestMenuRepository_StockChangesRejectNonPositiveQuantity(t *testing.T) {
	testDB := setupTestDB(t)
	_, regular, _ := seedPocha(t, testDB)
	repo := NewMenuRepository(testDB)

	for _, quantity := range []int{0, -2} {
		ok, err := repo.ReserveStock(regular.ID, quantity)
		assert.ErrorIs(t, err, ErrNonPositiveQuantity)
		assert.False(t, ok)

		assert.ErrorIs(t, repo.RestoreStock(regular.ID, quantity), ErrNonPositiveQuantity)
	}

	menu, err := repo.FindByID(regular.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, menu.Stock)
}

func TestMenuRepository_ReserveStockNeverNegative(t *testing.T) {
	testDB := setupTestDB(t)
	_, regular, _ := seedPocha(t, testDB)
	repo := NewMenuRepository(testDB)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ReserveStock(regular.ID, 1)
			if err == nil && ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	menu, err := repo.FindByID(regular.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, menu.Stock)
}

func TestMenuRepository_RestoreStockOnDeletedMenu(t *testing.T) {
	testDB := setupTestDB(t)
	_, regular, _ := seedPocha(t, testDB)
	repo := NewMenuRepository(testDB)

	require.NoError(t, repo.Delete(regular.ID))
	_, err := repo.FindByID(regular.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.RestoreStock(regular.ID, 3))

	var menu model.Menu
	require.NoError(t, testDB.Unscoped().First(&menu, regular.ID).Error)
	assert.Equal(t, 13, menu.Stock)
}

func TestMenuRepository_SetStock(t *testing.T) {
	testDB := setupTestDB(t)
	_, regular, _ := seedPocha(t, testDB)
	repo := NewMenuRepository(testDB)

	require.NoError(t, repo.SetStock(regular.ID, 42))
	menu, err := repo.FindByID(regular.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, menu.Stock)

	assert.ErrorIs(t, repo.SetStock(9999, 1), gorm.ErrRecordNotFound)
}

func TestMenuRepository_UpdateWritesZeroValues(t *testing.T) {
	testDB := setupTestDB(t)
	_, _, immediate := seedPocha(t, testDB)
	repo := NewMenuRepository(testDB)

	immediate.Stock = 0
	immediate.IsImmediatePrep = false
	immediate.AgeCheckRequired = false
	require.NoError(t, repo.Update(immediate))

	menu, err := repo.FindByID(immediate.ID)
	require.NoError(t, err)
	assert.Zero(t, menu.Stock)
	assert.False(t, menu.IsImmediatePrep)
	assert.False(t, menu.AgeCheckRequired)
}

func TestMenuRepository_FindByPochaID(t *testing.T) {
	testDB := setupTestDB(t)
	pocha, regular, immediate := seedPocha(t, testDB)
	repo := NewMenuRepository(testDB)

	menus, err := repo.FindByPochaID(pocha.ID)
	require.NoError(t, err)
	require.Len(t, menus, 2)
	assert.Equal(t, regular.ID, menus[0].ID)
	assert.Equal(t, immediate.ID, menus[1].ID)

	require.NoError(t, repo.Delete(regular.ID))
	menus, err = repo.FindByPochaID(pocha.ID)
	require.NoError(t, err)
	assert.Len(t, menus, 1)
}
