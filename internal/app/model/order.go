package model

import "time"

// Order 사용자 한 명의 포차별 주문. 미결제 상태일 때는 장바구니 역할을 한다.
type Order struct {
	ID         uint       `gorm:"primarykey" json:"orderID"`                                        // 주문 ID
	Email      string     `gorm:"type:varchar(255);not null;index:idx_orders_email_pocha" json:"email"` // 주문자 이메일
	PochaID    uint       `gorm:"not null;index:idx_orders_email_pocha" json:"parentPochaID"`       // 포차 ID
	IsPaid     bool       `gorm:"not null;default:false;index" json:"isPaid"`                       // 결제 완료 여부
	ReservedAt *time.Time `json:"reservedAt,omitempty"`                                             // 재고 선점 시각
	PaidAt     *time.Time `json:"paidAt,omitempty"`                                                 // 결제 확정 시각
	CreatedAt  time.Time  `json:"createdAt"`                                                        // 생성 시각
	UpdatedAt  time.Time  `json:"-"`                                                                // 수정 시각

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems,omitempty"` // 주문 항목 목록
}

func (Order) TableName() string {
	return "orders"
}

// IsReserved reports whether the order currently holds decremented stock.
func (o *Order) IsReserved() bool {
	return o.ReservedAt != nil
}

// MenuQuantities sums item quantities per menu.
func (o *Order) MenuQuantities() map[uint]int {
	totals := make(map[uint]int)
	for _, item := range o.OrderItems {
		totals[item.MenuID] += item.Quantity
	}
	return totals
}

// OrderItem 일반 메뉴는 수량 1짜리 행이 개수만큼, 즉시 제공 메뉴는 수량을 합친 한 행으로 저장된다.
type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"orderItemID"`                                // 주문 항목 ID
	OrderID   uint            `gorm:"not null;index" json:"parentOrderID"`                          // 주문 ID
	MenuID    uint            `gorm:"not null;index" json:"menuID"`                                 // 메뉴 ID
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`                           // 수량
	Status    OrderItemStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 조리 상태
	CreatedAt time.Time       `json:"createdAt"`                                                    // 생성 시각
	UpdatedAt time.Time       `json:"updatedAt"`                                                    // 수정 시각

	Order *Order `gorm:"foreignKey:OrderID" json:"-"`                // 주문 정보
	Menu  *Menu  `gorm:"foreignKey:MenuID" json:"menu,omitempty"`   // 메뉴 정보
}

func (OrderItem) TableName() string {
	return "order_items"
}
