package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken 刷新令牌表（轮换：每次刷新删除旧行写入新行）
type RefreshToken struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`    // 用户ID
	Token     string         `gorm:"uniqueIndex;not null" json:"-"`    // 令牌标识（JWT 的 jti）
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"` // 过期时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// PasswordResetToken 密码重置令牌表（一次性，1 小时有效）
type PasswordResetToken struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`    // 用户ID
	Token     string         `gorm:"uniqueIndex;not null" json:"-"`    // 重置令牌
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"` // 过期时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// OtpCode 一次性登录验证码表（5 分钟有效，使用后删除）
type OtpCode struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Email     string         `gorm:"index;not null" json:"email"`      // 邮箱
	Code      string         `gorm:"not null" json:"-"`                // 验证码（6 位数字）
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"` // 过期时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (OtpCode) TableName() string {
	return "otp_codes"
}
