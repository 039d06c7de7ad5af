package model

import "errors"

type OrderItemStatus string // 주문 항목 조리 상태

const (
	StatusPending   OrderItemStatus = "pending"   // 접수
	StatusPreparing OrderItemStatus = "preparing" // 조리 중
	StatusReady     OrderItemStatus = "ready"     // 픽업 대기
	StatusClosed    OrderItemStatus = "closed"    // 수령 완료
)

var (
	ErrStatusTerminal = errors.New("order item is already closed")
	ErrStatusUnknown  = errors.New("unknown order item status")
)

// statusTransitions 단방향 상태 전이표. closed 는 종료 상태.
var statusTransitions = map[OrderItemStatus]OrderItemStatus{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusClosed,
}

// ActiveStatuses are the dashboard buckets, in display order.
var ActiveStatuses = []OrderItemStatus{StatusPending, StatusPreparing, StatusReady}

// NextStatus returns the status an item moves to from current.
// Immediate-prep items skip preparing.
func NextStatus(current OrderItemStatus, immediatePrep bool) (OrderItemStatus, error) {
	if current == StatusClosed {
		return "", ErrStatusTerminal
	}
	if immediatePrep && current == StatusPending {
		return StatusReady, nil
	}
	next, ok := statusTransitions[current]
	if !ok {
		return "", ErrStatusUnknown
	}
	return next, nil
}

func (s OrderItemStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusClosed:
		return true
	}
	return false
}

func (s OrderItemStatus) IsActive() bool {
	return s.IsValid() && s != StatusClosed
}
