package constants

// 订单状态常量
const (
	OrderStatusPending    = "PENDING"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusRefunded   = "REFUNDED"
)

// 支付状态常量
const (
	PaymentStatusUnpaid   = "UNPAID"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

// 支付方式常量
const (
	PaymentMethodZarinpal       = "ZARINPAL"
	PaymentMethodCashOnDelivery = "CASH_ON_DELIVERY"
	PaymentMethodBankTransfer   = "BANK_TRANSFER"
)

// 用户角色常量
const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

// 商品列表排序常量
const (
	ProductSortPriceAsc  = "price-asc"
	ProductSortPriceDesc = "price-desc"
	ProductSortNewest    = "newest"
	ProductSortOldest    = "oldest"
)

// 凭证有效期常量
const (
	OtpCodeTTLMinutes        = 5
	PasswordResetTTLMinutes  = 60
	OtpCodeLength            = 6
	OrderNoPrefix            = "ORD"
	OrderNoSequenceWidth     = 5
	OrderNoCreateMaxAttempts = 3
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskOrderStatusEmail   = "order:status_email"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// 未支付订单超时取消时限（分钟）
const OrderPendingTimeoutMinutes = 60

// 缓存默认配置常量
const (
	RedisPrefixDefault = "toranj"
)

// 验证码校验场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
)

// 站点语言常量
const (
	LocaleFaIR = "fa-IR"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleFaIR, LocaleEnUS}
