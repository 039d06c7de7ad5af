package model

import "time"

// Pocha 판매 이벤트 (기간 한정 부스)
type Pocha struct {
	ID          uint      `gorm:"primarykey" json:"pochaID"`              // 포차 ID
	Title       string    `gorm:"type:varchar(32);not null" json:"title"` // 제목
	Description string    `gorm:"type:text" json:"description"`           // 설명
	StartDate   time.Time `gorm:"not null;index" json:"startDate"`        // 시작 시각
	EndDate     time.Time `gorm:"not null" json:"endDate"`                // 종료 시각
	CreatedAt   time.Time `json:"-"`                                      // 생성 시각
	UpdatedAt   time.Time `json:"-"`                                      // 수정 시각

	Menus []Menu `gorm:"foreignKey:PochaID" json:"menus,omitempty"` // 메뉴 목록
}

func (Pocha) TableName() string {
	return "pochas"
}

// IsOngoing reports whether now falls inside [StartDate, EndDate).
func (p *Pocha) IsOngoing(now time.Time) bool {
	return !now.Before(p.StartDate) && now.Before(p.EndDate)
}

// HasEnded reports whether the event is over at now. EndDate itself counts as ended.
func (p *Pocha) HasEnded(now time.Time) bool {
	return !now.Before(p.EndDate)
}
