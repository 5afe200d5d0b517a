package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID            uint           `gorm:"primarykey" json:"id"`                // 主键
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`   // 邮箱
	PasswordHash  string         `gorm:"default:''" json:"-"`                 // 密码哈希（OTP/Google 用户可为空）
	FirstName     string         `gorm:"default:''" json:"first_name"`        // 名
	LastName      string         `gorm:"default:''" json:"last_name"`         // 姓
	Phone         string         `gorm:"type:varchar(32)" json:"phone"`       // 手机号
	Role          string         `gorm:"default:'user';index" json:"role"`    // 角色（user/admin）
	GoogleID      string         `gorm:"index" json:"-"`                      // Google 账号ID
	Locale        string         `gorm:"default:'fa-IR'" json:"locale"`       // 语言偏好
	IsActive      bool           `json:"is_active"`                           // 是否启用
	EmailVerified bool           `gorm:"default:false" json:"email_verified"` // 邮箱是否已验证
	LastLoginAt   *time.Time     `json:"last_login_at"`                       // 最后登录时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`             // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
