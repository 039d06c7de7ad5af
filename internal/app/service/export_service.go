package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet  = "Orders"
	summarySheet = "Summary"
)

var allStatuses = []model.OrderItemStatus{
	model.StatusPending, model.StatusPreparing, model.StatusReady, model.StatusClosed,
}

type ExportService interface {
	ExportOrders(pochaID uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	pochaRepo     repository.PochaRepository
	menuRepo      repository.MenuRepository
	orderItemRepo repository.OrderItemRepository
	userRepo      repository.UserRepository
}

func NewExportService(
	pochaRepo repository.PochaRepository,
	menuRepo repository.MenuRepository,
	orderItemRepo repository.OrderItemRepository,
	userRepo repository.UserRepository,
) ExportService {
	return &exportService{
		pochaRepo:     pochaRepo,
		menuRepo:      menuRepo,
		orderItemRepo: orderItemRepo,
		userRepo:      userRepo,
	}
}

type menuSummary struct {
	sold    int
	revenue float64
}

// ExportOrders renders every paid item of the pocha into an xlsx workbook
// and returns it with a suggested file name.
func (s *exportService) ExportOrders(pochaID uint) (*bytes.Buffer, string, error) {
	pocha, err := s.pochaRepo.FindByID(pochaID)
	if err != nil {
		return nil, "", orNotFound(err, ErrPochaNotFound)
	}
	items, err := s.orderItemRepo.FindPaidByPocha(pochaID, allStatuses)
	if err != nil {
		return nil, "", err
	}
	menus, err := s.menuRepo.FindByPochaID(pochaID)
	if err != nil {
		return nil, "", err
	}

	emails := make([]string, 0, len(items))
	for _, item := range items {
		if item.Order != nil {
			emails = append(emails, item.Order.Email)
		}
	}
	users, err := s.userRepo.FindByEmails(emails)
	if err != nil {
		return nil, "", err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.Email] = u.FullName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return nil, "", fmt.Errorf("failed to name orders sheet: %w", err)
	}
	header := []interface{}{"Order Item ID", "Order ID", "Orderer", "Email", "Menu", "Category", "Quantity", "Unit Price", "Amount", "Status", "Paid At"}
	if err := f.SetSheetRow(ordersSheet, "A1", &header); err != nil {
		return nil, "", err
	}

	summaries := make(map[uint]*menuSummary)
	for i, item := range items {
		var (
			email, paidAt string
			orderID       uint
			menuName, cat string
			price         float64
		)
		if item.Order != nil {
			email = item.Order.Email
			orderID = item.Order.ID
			if item.Order.PaidAt != nil {
				paidAt = item.Order.PaidAt.Format(time.RFC3339)
			}
		}
		if item.Menu != nil {
			menuName, cat, price = item.Menu.NameKor, item.Menu.Category, item.Menu.Price
		}
		amount := price * float64(item.Quantity)

		row := []interface{}{item.ID, orderID, names[email], email, menuName, cat, item.Quantity, price, amount, string(item.Status), paidAt}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return nil, "", err
		}

		sum, ok := summaries[item.MenuID]
		if !ok {
			sum = &menuSummary{}
			summaries[item.MenuID] = sum
		}
		sum.sold += item.Quantity
		sum.revenue += amount
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summaryHeader := []interface{}{"Menu ID", "Menu", "Category", "Sold", "Revenue", "Remaining Stock"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return nil, "", err
	}
	for i, menu := range menus {
		sum := summaries[menu.ID]
		if sum == nil {
			sum = &menuSummary{}
		}
		row := []interface{}{menu.ID, menu.NameKor, menu.Category, sum.sold, sum.revenue, menu.Stock}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Orders exported", map[string]interface{}{
		"pocha_id": pochaID,
		"items":    len(items),
		"menus":    len(menus),
	})
	return buf, fmt.Sprintf("pocha-%d-orders.xlsx", pocha.ID), nil
}
