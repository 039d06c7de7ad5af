package service

import (
	"context"
	"errors"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

var (
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrOrderItemClosed   = errors.New("order item already closed")
	ErrOrderNotPaid      = errors.New("order is not paid")
	ErrStatusConflict    = errors.New("order item status changed concurrently")
)

const (
	subjectStatusUpdate = "order-status-update"
	subjectStatusAlert  = "Order Status Changed"
	readyAlertTitle     = "Your Order is Ready!"
	readyAlertBody      = "Please pick up your order at the booth."
)

// Notifier delivers push notifications to a user's registered device
type Notifier interface {
	SendSilent(ctx context.Context, email, subject string, data map[string]interface{}) error
	SendAlert(ctx context.Context, email, subject, title, body string) error
}

type StatusChange struct {
	OrderItemID uint                  `json:"orderItemID"`
	NewStatus   model.OrderItemStatus `json:"newStatus"`
}

type OrderStatusService interface {
	AdvanceStatus(ctx context.Context, orderItemID uint) (*StatusChange, error)
}

type orderStatusService struct {
	orderItemRepo repository.OrderItemRepository
	notifier      Notifier
	emitter       EventEmitter
}

func NewOrderStatusService(orderItemRepo repository.OrderItemRepository, notifier Notifier, emitter EventEmitter) OrderStatusService {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &orderStatusService{
		orderItemRepo: orderItemRepo,
		notifier:      notifier,
		emitter:       emitter,
	}
}

// AdvanceStatus moves the item one step along the status table.
// The write is conditional on the status read, so two staff advancing the
// same item cannot skip a step.
func (s *orderStatusService) AdvanceStatus(ctx context.Context, orderItemID uint) (*StatusChange, error) {
	item, err := s.orderItemRepo.FindByID(orderItemID)
	if err != nil {
		return nil, orNotFound(err, ErrOrderItemNotFound)
	}
	if item.Order == nil {
		return nil, ErrOrderItemNotFound
	}
	if !item.Order.IsPaid {
		return nil, ErrOrderNotPaid
	}

	immediate := item.Menu != nil && item.Menu.IsImmediatePrep
	next, err := model.NextStatus(item.Status, immediate)
	if errors.Is(err, model.ErrStatusTerminal) {
		return nil, ErrOrderItemClosed
	}
	if err != nil {
		return nil, err
	}

	applied, err := s.orderItemRepo.TransitionStatus(item.ID, item.Status, next)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrStatusConflict
	}

	logger.Info("Order item status changed", map[string]interface{}{
		"order_item_id": item.ID,
		"from":          item.Status,
		"to":            next,
		"email":         item.Order.Email,
	})

	change := &StatusChange{OrderItemID: item.ID, NewStatus: next}
	s.notifyStatusChange(ctx, item.Order.Email, change)
	return change, nil
}

// notifyStatusChange runs after the write; failures are logged only
func (s *orderStatusService) notifyStatusChange(ctx context.Context, email string, change *StatusChange) {
	fields := map[string]interface{}{
		"order_item_id": change.OrderItemID,
		"status":        change.NewStatus,
		"email":         email,
	}

	if s.notifier != nil {
		data := map[string]interface{}{
			"event":       subjectStatusUpdate,
			"orderItemID": change.OrderItemID,
			"status":      change.NewStatus,
		}
		if err := s.notifier.SendSilent(ctx, email, subjectStatusUpdate, data); err != nil {
			logger.Warn("Failed to send silent status notification", withError(fields, err))
		}
	}

	payload := map[string]interface{}{
		"status":      change.NewStatus,
		"orderItemID": change.OrderItemID,
	}
	if err := s.emitter.Emit(StatusChangeEvent(email), payload); err != nil {
		logger.Warn("Failed to emit status change event", withError(fields, err))
	}

	if change.NewStatus == model.StatusReady && s.notifier != nil {
		if err := s.notifier.SendAlert(ctx, email, subjectStatusAlert, readyAlertTitle, readyAlertBody); err != nil {
			logger.Warn("Failed to send ready alert", withError(fields, err))
		}
	}
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
