package model

import "time"

// PushEndpoint 사용자 기기의 푸시 엔드포인트 (이메일당 1개)
type PushEndpoint struct {
	ID          uint      `gorm:"primarykey" json:"id"`                       // ID
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`          // 사용자 이메일
	DeviceToken string    `gorm:"type:text;not null" json:"-"`                // 기기 토큰
	EndpointARN string    `gorm:"type:varchar(512);not null" json:"endpointARN"` // 플랫폼 엔드포인트 ARN
	CreatedAt   time.Time `json:"createdAt"`                                  // 생성 시각
	UpdatedAt   time.Time `json:"updatedAt"`                                  // 수정 시각
}

func (PushEndpoint) TableName() string {
	return "push_endpoints"
}
