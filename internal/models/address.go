package models

import (
	"time"

	"gorm.io/gorm"
)

// Address 收货地址表
type Address struct {
	ID           uint           `gorm:"primarykey" json:"id"`                   // 主键
	UserID       uint           `gorm:"index;not null" json:"user_id"`          // 用户ID
	Title        string         `gorm:"default:''" json:"title"`                // 地址别名（家/公司）
	ReceiverName string         `gorm:"not null" json:"receiver_name"`          // 收货人
	Phone        string         `gorm:"not null" json:"phone"`                  // 电话
	Province     string         `gorm:"not null" json:"province"`               // 省份
	City         string         `gorm:"not null" json:"city"`                   // 城市
	PostalCode   string         `gorm:"type:varchar(20)" json:"postal_code"`    // 邮政编码
	AddressLine  string         `gorm:"type:text;not null" json:"address_line"` // 详细地址
	IsDefault    bool           `gorm:"default:false;index" json:"is_default"`  // 是否默认地址（每用户至多一个）
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
