package service

import (
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

var ErrInvalidStock = errors.New("stock must not be negative")

// OrderBuckets groups order items by status
type OrderBuckets map[model.OrderItemStatus][]OrderItemView

type DashboardService interface {
	ActiveOrders(pochaID uint) (OrderBuckets, error)
	ClosedOrders(pochaID uint) (OrderBuckets, error)
	UserOrders(email string, pochaID uint) (OrderBuckets, error)
	ChangeStock(menuID uint, stock int) error
}

type dashboardService struct {
	userRepo      repository.UserRepository
	menuRepo      repository.MenuRepository
	orderItemRepo repository.OrderItemRepository
}

func NewDashboardService(
	userRepo repository.UserRepository,
	menuRepo repository.MenuRepository,
	orderItemRepo repository.OrderItemRepository,
) DashboardService {
	return &dashboardService{
		userRepo:      userRepo,
		menuRepo:      menuRepo,
		orderItemRepo: orderItemRepo,
	}
}

func emptyBuckets(statuses []model.OrderItemStatus) OrderBuckets {
	buckets := make(OrderBuckets, len(statuses))
	for _, status := range statuses {
		buckets[status] = []OrderItemView{}
	}
	return buckets
}

// ActiveOrders lists paid items not yet closed, with orderer name and email
func (s *dashboardService) ActiveOrders(pochaID uint) (OrderBuckets, error) {
	items, err := s.orderItemRepo.FindPaidByPocha(pochaID, model.ActiveStatuses)
	if err != nil {
		return nil, err
	}
	return s.bucketWithOrderers(items, model.ActiveStatuses)
}

func (s *dashboardService) ClosedOrders(pochaID uint) (OrderBuckets, error) {
	statuses := []model.OrderItemStatus{model.StatusClosed}
	items, err := s.orderItemRepo.FindPaidByPocha(pochaID, statuses)
	if err != nil {
		return nil, err
	}
	return s.bucketWithOrderers(items, statuses)
}

// UserOrders is the orderer's own view, without orderer fields
func (s *dashboardService) UserOrders(email string, pochaID uint) (OrderBuckets, error) {
	items, err := s.orderItemRepo.FindPaidByUser(email, pochaID, model.ActiveStatuses)
	if err != nil {
		return nil, err
	}

	buckets := emptyBuckets(model.ActiveStatuses)
	for _, item := range items {
		buckets[item.Status] = append(buckets[item.Status], newOrderItemView(item))
	}
	return buckets, nil
}

func (s *dashboardService) bucketWithOrderers(items []model.OrderItem, statuses []model.OrderItemStatus) (OrderBuckets, error) {
	names, err := s.ordererNames(items)
	if err != nil {
		return nil, err
	}

	buckets := emptyBuckets(statuses)
	for _, item := range items {
		view := newOrderItemView(item)
		if item.Order != nil {
			view.OrdererEmail = item.Order.Email
			view.OrdererName = names[item.Order.Email]
		}
		buckets[item.Status] = append(buckets[item.Status], view)
	}

	logger.Debug("Dashboard orders bucketed", map[string]interface{}{
		"items":    len(items),
		"statuses": statuses,
	})
	return buckets, nil
}

func (s *dashboardService) ordererNames(items []model.OrderItem) (map[string]string, error) {
	seen := make(map[string]bool)
	var emails []string
	for _, item := range items {
		if item.Order != nil && !seen[item.Order.Email] {
			seen[item.Order.Email] = true
			emails = append(emails, item.Order.Email)
		}
	}

	users, err := s.userRepo.FindByEmails(emails)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.Email] = u.FullName
	}
	return names, nil
}

// ChangeStock sets the absolute stock of a menu
func (s *dashboardService) ChangeStock(menuID uint, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	if err := s.menuRepo.SetStock(menuID, stock); err != nil {
		return orNotFound(err, ErrMenuNotFound)
	}

	logger.Info("Menu stock changed", map[string]interface{}{
		"menu_id": menuID,
		"stock":   stock,
	})
	return nil
}
