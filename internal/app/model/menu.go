package model

import (
	"time"

	"gorm.io/gorm"
)

type Menu struct {
	ID               uint           `gorm:"primarykey" json:"menuID"`                                   // 메뉴 ID
	PochaID          uint           `gorm:"not null;index" json:"parentPochaID"`                        // 소속 포차 ID
	NameKor          string         `gorm:"type:varchar(64);not null" json:"nameKor"`                   // 한글 이름 (메뉴 병합 키)
	NameEng          string         `gorm:"type:varchar(64)" json:"nameEng"`                            // 영문 이름
	Category         string         `gorm:"type:varchar(32);index" json:"category"`                     // 카테고리
	Price            float64        `gorm:"not null" json:"price"`                                      // 가격
	Stock            int            `gorm:"not null;default:0;check:stock >= 0" json:"stock"`           // 재고
	IsImmediatePrep  bool           `gorm:"not null;default:false" json:"isImmediatePrep"`              // 즉시 제공 메뉴 여부
	AgeCheckRequired bool           `gorm:"not null;default:false" json:"ageCheckRequired"`             // 성인 인증 필요 여부
	ImageURL         string         `gorm:"type:text" json:"imageURL"`                                  // 이미지 URL
	CreatedAt        time.Time      `json:"-"`                                                          // 생성 시각
	UpdatedAt        time.Time      `json:"-"`                                                          // 수정 시각
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                             // 삭제 시각(소프트 삭제, 주문 이력 보존)
}

func (Menu) TableName() string {
	return "menus"
}
