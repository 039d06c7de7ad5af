package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
)

func TestPaymentService_ReserveStock(t *testing.T) {
	env := setupTestEnv(t)
	cart := env.cartService()
	svc := env.paymentService(nil)

	_, err := cart.ModifyCart(testEmail, env.pocha.ID, env.regular.ID, 3)
	require.NoError(t, err)
	_, err = cart.ModifyCart(testEmail, env.pocha.ID, env.immediate.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.ReserveStock(testEmail, env.pocha.ID))
	assert.Equal(t, 7, env.stock(t, env.regular.ID))
	assert.Equal(t, 3, env.stock(t, env.immediate.ID))

	order := env.cart(t)
	require.True(t, order.IsReserved())
	assert.True(t, order.ReservedAt.Equal(testNow))

	// 두 번째 선점은 재고를 다시 줄이지 않는다
	require.NoError(t, svc.ReserveStock(testEmail, env.pocha.ID))
	assert.Equal(t, 7, env.stock(t, env.regular.ID))
	assert.Equal(t, 3, env.stock(t, env.immediate.ID))
}

func TestPaymentService_ReserveStockShortageRollsBack(t *testing.T) {
	env := setupTestEnv(t)
	cart := env.cartService()
	svc := env.paymentService(nil)

	_, err := cart.ModifyCart(testEmail, env.pocha.ID, env.regular.ID, 2)
	require.NoError(t, err)
	_, err = cart.ModifyCart(testEmail, env.pocha.ID, env.immediate.ID, 6)
	require.NoError(t, err)

	err = svc.ReserveStock(testEmail, env.pocha.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var shortage *StockShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, env.immediate.ID, shortage.Menu.ID)
	assert.Equal(t, 6, shortage.Requested)

	// 앞서 줄인 일반 메뉴 재고도 롤백
	assert.Equal(t, 10, env.stock(t, env.regular.ID))
	assert.Equal(t, 5, env.stock(t, env.immediate.ID))
	assert.False(t, env.cart(t).IsReserved())
}

func TestPaymentService_ReserveStockErrors(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.paymentService(nil)

	err := svc.ReserveStock("ghost@umich.edu", env.pocha.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.ReserveStock(testEmail, env.pocha.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	// 항목 없는 미결제 주문
	require.NoError(t, env.orders.Create(&model.Order{Email: testEmail, PochaID: env.pocha.ID}))
	err = svc.ReserveStock(testEmail, env.pocha.ID)
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestPaymentService_ApplyResultSuccess(t *testing.T) {
	env := setupTestEnv(t)
	cart := env.cartService()
	emitter := &recordingEmitter{}
	svc := env.paymentService(emitter)

	_, err := cart.ModifyCart(testEmail, env.pocha.ID, env.regular.ID, 2)
	require.NoError(t, err)
	require.NoError(t, svc.ReserveStock(testEmail, env.pocha.ID))

	outcome, err := svc.ApplyResult(testEmail, env.pocha.ID, PaymentSuccess)
	require.NoError(t, err)
	assert.Equal(t, PaymentSuccess, outcome.Result)
	assert.NotZero(t, outcome.OrderID)
	require.Len(t, outcome.NewOrderItems, 2)
	assert.Equal(t, model.StatusPending, outcome.NewOrderItems[0].Status)
	assert.Equal(t, "떡볶이", outcome.NewOrderItems[0].Menu.NameKor)

	// 선점된 재고를 그대로 사용
	assert.Equal(t, 8, env.stock(t, env.regular.ID))
	assert.Equal(t, 8, outcome.NewOrderItems[1].Menu.Stock)

	var order model.Order
	require.NoError(t, env.db.First(&order, outcome.OrderID).Error)
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	assert.True(t, order.PaidAt.Equal(testNow))

	require.Len(t, emitter.events, 1)
	assert.Equal(t, EventOrderCreated, emitter.events[0].name)
	payload, ok := emitter.events[0].payload.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, payload["newOrderItems"], 2)

	// 결제 후에는 장바구니가 비어 있다
	_, err = env.orders.FindUnpaid(testEmail, env.pocha.ID)
	assert.Error(t, err)
}

func TestPaymentService_ApplyResultSuccessReservesInline(t *testing.T) {
	env := setupTestEnv(t)
	cart := env.cartService()
	svc := env.paymentService(nil)

	_, err := cart.ModifyCart(testEmail, env.pocha.ID, env.immediate.ID, 4)
	require.NoError(t, err)

	outcome, err := svc.ApplyResult(testEmail, env.pocha.ID, PaymentSuccess)
	require.NoError(t, err)
	require.Len(t, outcome.NewOrderItems, 1)
	assert.Equal(t, 1, env.stock(t, env.immediate.ID))
	// 이벤트 뷰도 선점 이후 재고를 보여야 함
	require.NotNil(t, outcome.NewOrderItems[0].Menu)
	assert.Equal(t, 1, outcome.NewOrderItems[0].Menu.Stock)
}

func TestPaymentService_ApplyResultSuccessShortage(t *testing.T) {
	env := setupTestEnv(t)
	cart := env.cartService()
	emitter := &recordingEmitter{}
	svc := env.paymentService(emitter)

	_, err := cart.ModifyCart(testEmail, env.pocha.ID, env.immediate.ID, 4)
	require.NoError(t, err)
	require.NoError(t, env.menus.SetStock(env.immediate.ID, 3))

	_, err = svc.ApplyResult(testEmail, env.pocha.ID, PaymentSuccess)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, emitter.events)
	assert.Equal(t, 3, env.stock(t, env.immediate.ID))
	assert.False(t, env.cart(t).IsPaid)
}

func TestPaymentService_ApplyResultFailure(t *testing.T) {
	env := setupTestEnv(t)
	cart := env.cartService()
	emitter := &recordingEmitter{}
	svc := env.paymentService(emitter)

	_, err := cart.ModifyCart(testEmail, env.pocha.ID, env.regular.ID, 3)
	require.NoError(t, err)

	// 선점 전 실패는 재고 변화 없음
	outcome, err := svc.ApplyResult(testEmail, env.pocha.ID, PaymentFailure)
	require.NoError(t, err)
	assert.False(t, outcome.Restocked)
	assert.Equal(t, 10, env.stock(t, env.regular.ID))

	require.NoError(t, svc.ReserveStock(testEmail, env.pocha.ID))
	assert.Equal(t, 7, env.stock(t, env.regular.ID))

	outcome, err = svc.ApplyResult(testEmail, env.pocha.ID, PaymentFailure)
	require.NoError(t, err)
	assert.True(t, outcome.Restocked)
	assert.Equal(t, 10, env.stock(t, env.regular.ID))

	// 장바구니는 유지되고 선점만 해제
	order := env.cart(t)
	assert.False(t, order.IsReserved())
	assert.Len(t, order.OrderItems, 3)
	assert.Empty(t, emitter.events)
}

func TestPaymentService_ApplyResultInvalid(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.paymentService(nil)

	_, err := svc.ApplyResult(testEmail, env.pocha.ID, PaymentResult("pending"))
	assert.ErrorIs(t, err, ErrInvalidPaymentResult)

	_, err = svc.ApplyResult(testEmail, env.pocha.ID, PaymentSuccess)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestPaymentService_EmitFailureDoesNotFailPayment(t *testing.T) {
	env := setupTestEnv(t)
	emitter := &recordingEmitter{err: errors.New("redis down")}
	svc := env.paymentService(emitter)

	_, err := env.cartService().ModifyCart(testEmail, env.pocha.ID, env.regular.ID, 1)
	require.NoError(t, err)

	outcome, err := svc.ApplyResult(testEmail, env.pocha.ID, PaymentSuccess)
	require.NoError(t, err)
	assert.Equal(t, PaymentSuccess, outcome.Result)
	assert.Len(t, emitter.events, 1)
}

func TestPaymentService_ReleaseExpiredReservations(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.paymentService(nil)

	_, err := env.cartService().ModifyCart(testEmail, env.pocha.ID, env.regular.ID, 4)
	require.NoError(t, err)
	require.NoError(t, svc.ReserveStock(testEmail, env.pocha.ID))
	assert.Equal(t, 6, env.stock(t, env.regular.ID))

	// 아직 만료 전
	released, err := svc.ReleaseExpiredReservations(testNow.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, released)
	assert.Equal(t, 6, env.stock(t, env.regular.ID))

	released, err = svc.ReleaseExpiredReservations(testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, 10, env.stock(t, env.regular.ID))
	assert.False(t, env.cart(t).IsReserved())

	released, err = svc.ReleaseExpiredReservations(testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, released)
}
