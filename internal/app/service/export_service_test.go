package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportOrders(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewExportService(env.pochas, env.menus, env.items, env.users)

	env.paidItem(t, testEmail, env.regular, model.StatusPending)
	env.paidItem(t, testEmail, env.regular, model.StatusClosed)
	env.paidItem(t, testEmail, env.immediate, model.StatusReady)

	// 미결제 항목은 내보내지 않는다
	_, err := env.cartService().ModifyCart(testEmail, env.pocha.ID, env.regular.ID, 1)
	require.NoError(t, err)

	buf, filename, err := svc.ExportOrders(env.pocha.ID)
	require.NoError(t, err)
	assert.Contains(t, filename, "orders.xlsx")

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Order Item ID", rows[0][0])
	assert.Equal(t, "Jiwoo Kim", rows[1][2])
	assert.Equal(t, testEmail, rows[1][3])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "떡볶이", summary[1][1])
	assert.Equal(t, "2", summary[1][3])
	assert.Equal(t, "16", summary[1][4])
	assert.Equal(t, "소주", summary[2][1])
	assert.Equal(t, "1", summary[2][3])
}

func TestExportService_UnknownPocha(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewExportService(env.pochas, env.menus, env.items, env.users)

	_, _, err := svc.ExportOrders(9999)
	assert.ErrorIs(t, err, ErrPochaNotFound)
}
