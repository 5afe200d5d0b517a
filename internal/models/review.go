package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 商品评价表（每个用户对同一商品仅一条）
type Review struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                           // 主键
	UserID     uint           `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`    // 用户ID
	ProductID  uint           `gorm:"not null;uniqueIndex:idx_review_user_product" json:"product_id"` // 商品ID
	Rating     int            `gorm:"not null" json:"rating"`                                         // 评分（1-5）
	Comment    string         `gorm:"type:text" json:"comment"`                                       // 评价内容
	IsApproved bool           `gorm:"default:false;index" json:"is_approved"`                         // 是否审核通过
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                                     // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // 评价用户
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}

// Wishlist 心愿单表（(userId, productId) 唯一）
type Wishlist struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                             // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`    // 用户ID
	ProductID uint           `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"` // 商品ID
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (Wishlist) TableName() string {
	return "wishlists"
}
