package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/internal/db"
	"github.com/umichkisa/pocha-backend/internal/push"
	"gorm.io/gorm"
)

const testEmail = "jiwoo@umich.edu"

var testNow = time.Date(2026, 4, 18, 19, 0, 0, 0, time.UTC)

type testEnv struct {
	db        *gorm.DB
	users     repository.UserRepository
	pochas    repository.PochaRepository
	menus     repository.MenuRepository
	orders    repository.OrderRepository
	items     repository.OrderItemRepository
	endpoints repository.PushEndpointRepository

	pocha     *model.Pocha
	regular   *model.Menu // stock 10, price 8
	immediate *model.Menu // stock 5, price 6, age check
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	env := &testEnv{
		db:        testDB,
		users:     repository.NewUserRepository(testDB),
		pochas:    repository.NewPochaRepository(testDB),
		menus:     repository.NewMenuRepository(testDB),
		orders:    repository.NewOrderRepository(testDB),
		items:     repository.NewOrderItemRepository(testDB),
		endpoints: repository.NewPushEndpointRepository(testDB),
	}

	require.NoError(t, env.users.Create(&model.User{Email: testEmail, FullName: "Jiwoo Kim"}))

	env.pocha = &model.Pocha{
		Title:       "KISA 포차",
		Description: "spring pocha",
		StartDate:   testNow.Add(-2 * time.Hour),
		EndDate:     testNow.Add(4 * time.Hour),
	}
	require.NoError(t, env.pochas.Create(env.pocha))

	env.regular = &model.Menu{PochaID: env.pocha.ID, NameKor: "떡볶이", NameEng: "Tteokbokki", Category: "Food", Price: 8, Stock: 10}
	env.immediate = &model.Menu{PochaID: env.pocha.ID, NameKor: "소주", NameEng: "Soju", Category: "Drink", Price: 6, Stock: 5, IsImmediatePrep: true, AgeCheckRequired: true}
	require.NoError(t, env.menus.Create(env.regular))
	require.NoError(t, env.menus.Create(env.immediate))
	return env
}

func (e *testEnv) cartService() CartService {
	return NewCartService(e.users, e.pochas, e.menus, e.orders, e.items, e.db)
}

func (e *testEnv) paymentService(emitter EventEmitter) *paymentService {
	svc := NewPaymentService(e.users, e.menus, e.orders, emitter, e.db).(*paymentService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func (e *testEnv) stock(t *testing.T, menuID uint) int {
	t.Helper()
	var menu model.Menu
	require.NoError(t, e.db.Unscoped().First(&menu, menuID).Error)
	return menu.Stock
}

func (e *testEnv) cart(t *testing.T) *model.Order {
	t.Helper()
	order, err := e.orders.FindUnpaid(testEmail, e.pocha.ID)
	require.NoError(t, err)
	return order
}

// paidItem inserts a paid order with one item in the given status
func (e *testEnv) paidItem(t *testing.T, email string, menu *model.Menu, status model.OrderItemStatus) *model.OrderItem {
	t.Helper()
	order := &model.Order{Email: email, PochaID: e.pocha.ID, IsPaid: true}
	require.NoError(t, e.orders.Create(order))
	batch := []model.OrderItem{{OrderID: order.ID, MenuID: menu.ID, Quantity: 1, Status: status}}
	require.NoError(t, e.items.CreateBatch(batch))
	return &batch[0]
}

type emittedEvent struct {
	name    string
	payload interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
	err    error
}

func (r *recordingEmitter) Emit(event string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emittedEvent{name: event, payload: payload})
	return r.err
}

type sentPush struct {
	email   string
	subject string
	title   string
	silent  bool
	data    map[string]interface{}
}

type fakeNotifier struct {
	sent []sentPush
	err  error
}

func (f *fakeNotifier) SendSilent(_ context.Context, email, subject string, data map[string]interface{}) error {
	f.sent = append(f.sent, sentPush{email: email, subject: subject, silent: true, data: data})
	return f.err
}

func (f *fakeNotifier) SendAlert(_ context.Context, email, subject, title, _ string) error {
	f.sent = append(f.sent, sentPush{email: email, subject: subject, title: title})
	return f.err
}

type fakeGateway struct {
	endpoints map[string]string
	published []push.Message
	createErr error
}

func (f *fakeGateway) CreateEndpoint(_ context.Context, token, userData string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.endpoints == nil {
		f.endpoints = make(map[string]string)
	}
	arn := "arn:aws:sns:us-east-2:000000000000:endpoint/GCM/pocha/" + token
	f.endpoints[userData] = arn
	return arn, nil
}

func (f *fakeGateway) Publish(_ context.Context, _ string, msg push.Message) error {
	f.published = append(f.published, msg)
	return nil
}

type fakeImageStore struct {
	deleted []string
	err     error
}

func (f *fakeImageStore) DeleteByURL(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.err
}
