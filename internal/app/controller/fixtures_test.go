package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	"github.com/umichkisa/pocha-backend/internal/db"
	"github.com/umichkisa/pocha-backend/internal/middleware"
	"gorm.io/gorm"
)

const testEmail = "jiwoo@umich.edu"

type controllerEnv struct {
	db     *gorm.DB
	router *gin.Engine

	users  repository.UserRepository
	menus  repository.MenuRepository
	orders repository.OrderRepository
	items  repository.OrderItemRepository

	cartService service.CartService

	pocha     *model.Pocha
	regular   *model.Menu
	immediate *model.Menu
}

// setupControllerTest wires real services over an in-memory database.
// Requests are authenticated as the given email and role.
func setupControllerTest(t *testing.T, email string, role model.UserRole) *controllerEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	env := &controllerEnv{
		db:     testDB,
		users:  repository.NewUserRepository(testDB),
		menus:  repository.NewMenuRepository(testDB),
		orders: repository.NewOrderRepository(testDB),
		items:  repository.NewOrderItemRepository(testDB),
	}
	pochas := repository.NewPochaRepository(testDB)

	require.NoError(t, env.users.Create(&model.User{Email: testEmail, FullName: "Jiwoo Kim"}))

	now := time.Now().UTC()
	env.pocha = &model.Pocha{Title: "KISA 포차", Description: "spring pocha", StartDate: now.Add(-time.Hour), EndDate: now.Add(5 * time.Hour)}
	require.NoError(t, pochas.Create(env.pocha))
	env.regular = &model.Menu{PochaID: env.pocha.ID, NameKor: "떡볶이", NameEng: "Tteokbokki", Category: "Food", Price: 8, Stock: 10}
	env.immediate = &model.Menu{PochaID: env.pocha.ID, NameKor: "소주", NameEng: "Soju", Category: "Drink", Price: 6, Stock: 5, IsImmediatePrep: true, AgeCheckRequired: true}
	require.NoError(t, env.menus.Create(env.regular))
	require.NoError(t, env.menus.Create(env.immediate))

	env.cartService = service.NewCartService(env.users, pochas, env.menus, env.orders, env.items, testDB)
	paymentService := service.NewPaymentService(env.users, env.menus, env.orders, nil, testDB)
	dashboardService := service.NewDashboardService(env.users, env.menus, env.items)
	statusService := service.NewOrderStatusService(env.items, nil, nil)
	exportService := service.NewExportService(pochas, env.menus, env.items, env.users)
	pochaService := service.NewPochaService(pochas, env.menus, nil, testDB)

	cart := NewCartController(env.cartService)
	payment := NewPaymentController(paymentService)
	dashboard := NewDashboardController(dashboardService, statusService, exportService)
	pocha := NewPochaController(pochaService)
	orders := NewOrderController(dashboardService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserEmailKey, email)
		c.Set(middleware.UserRoleKey, role)
		c.Next()
	})

	api := r.Group("/api/v2/pocha")
	api.GET("/status-info/", pocha.GetStatusInfo)
	api.GET("/menu/:pochaID/", pocha.GetMenu)
	api.POST("/", pocha.CreatePocha)
	api.PUT("/:pochaID/", pocha.UpdatePocha)

	cartGroup := api.Group("/cart/:email/:pochaID")
	cartGroup.GET("/", cart.GetCart)
	cartGroup.POST("/", cart.ModifyCart)
	cartGroup.PATCH("/", cart.ModifyCart)
	cartGroup.DELETE("/", cart.ModifyCart)
	cartGroup.GET("/checkout-info/", cart.GetCheckoutInfo)

	paymentGroup := api.Group("/payment/:email/:pochaID")
	paymentGroup.GET("/check-stock/", payment.CheckStock)
	paymentGroup.PUT("/pay-result/", payment.PayResult)

	api.GET("/order/:email/:pochaID/", orders.GetUserOrders)

	dash := api.Group("/dashboard")
	dash.PUT("/change-stock/", dashboard.ChangeStock)
	dash.GET("/:pochaID/", dashboard.GetActiveOrders)
	dash.GET("/:pochaID/closed/", dashboard.GetClosedOrders)
	dash.GET("/:pochaID/export/", dashboard.ExportOrders)
	dash.PUT("/:orderItemID/change-status/", dashboard.ChangeStatus)

	env.router = r
	return env
}

func (e *controllerEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// paidItem inserts a paid single-item order
func (e *controllerEnv) paidItem(t *testing.T, menu *model.Menu, status model.OrderItemStatus) *model.OrderItem {
	t.Helper()
	order := &model.Order{Email: testEmail, PochaID: e.pocha.ID, IsPaid: true}
	require.NoError(t, e.orders.Create(order))
	batch := []model.OrderItem{{OrderID: order.ID, MenuID: menu.ID, Quantity: 1, Status: status}}
	require.NoError(t, e.items.CreateBatch(batch))
	return &batch[0]
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
