package model

import "time"

type UserRole string // 사용자 권한 타입

const (
	RoleUser  UserRole = "user"  // 일반 사용자 권한
	RoleAdmin UserRole = "admin" // 포차 운영진 권한
)

// User 포차 주문자. 회원 관리는 별도 서비스에서 하며 여기서는 조회만 한다.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`                        // 사용자 ID
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`           // 이메일 (주문 식별 키)
	FullName  string    `gorm:"not null" json:"fullName"`                    // 이름
	Role      UserRole  `gorm:"type:varchar(20);default:'user'" json:"role"` // 권한
	CreatedAt time.Time `json:"createdAt"`                                   // 생성 시각
	UpdatedAt time.Time `json:"updatedAt"`                                   // 수정 시각
}

func (User) TableName() string {
	return "users"
}
