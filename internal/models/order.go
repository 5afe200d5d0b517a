package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（创建后除状态/物流字段外不可变）
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo          string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号（ORD-YYYYMMDD-NNNNN）
	UserID           uint           `gorm:"index;not null" json:"user_id"`                                // 用户ID
	Status           string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	PaymentMethod    string         `gorm:"not null" json:"payment_method"`                               // 支付方式
	PaymentStatus    string         `gorm:"index;not null" json:"payment_status"`                         // 支付状态
	Subtotal         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 原始金额
	DiscountAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	ShippingName     string         `gorm:"not null" json:"shipping_name"`                                // 收货人（下单时快照）
	ShippingPhone    string         `gorm:"not null" json:"shipping_phone"`                               // 收货电话
	ShippingProvince string         `gorm:"not null" json:"shipping_province"`                            // 收货省份
	ShippingCity     string         `gorm:"not null" json:"shipping_city"`                                // 收货城市
	ShippingPostal   string         `gorm:"not null" json:"shipping_postal_code"`                         // 邮政编码
	ShippingAddress  string         `gorm:"type:text;not null" json:"shipping_address"`                   // 详细地址
	Note             string         `gorm:"type:text" json:"note"`                                        // 用户备注
	TrackingCode     string         `gorm:"type:varchar(100)" json:"tracking_code"`                       // 物流追踪码
	AdminNote        string         `gorm:"type:text" json:"admin_note,omitempty"`                        // 管理员备注
	GatewayAuthority string         `gorm:"index;type:varchar(64)" json:"-"`                              // 支付网关 Authority（下单时写入，回调按此定位订单）
	GatewayRefID     string         `gorm:"type:varchar(64)" json:"gateway_ref_id,omitempty"`             // 支付网关交易参考号
	PaidAt           *time.Time     `gorm:"index" json:"paid_at"`                                         // 支付时间
	ShippedAt        *time.Time     `json:"shipped_at"`                                                   // 发货时间
	DeliveredAt      *time.Time     `json:"delivered_at"`                                                 // 送达时间
	CanceledAt       *time.Time     `json:"canceled_at"`                                                  // 取消时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项表（下单时的商品快照）
type OrderItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID       uint           `gorm:"index;not null" json:"product_id"`                         // 商品ID
	ProductName     string         `gorm:"not null" json:"product_name"`                             // 商品名称快照
	UnitPrice       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价快照
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`               // 折扣百分比快照
	Quantity        int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                               // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
