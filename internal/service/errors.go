package service

import "errors"

// 服务层业务错误（由 handler 层映射为响应码与文案）
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrAccountDisabled    = errors.New("账号已禁用")
	ErrEmailExists        = errors.New("邮箱已注册")
	ErrEmailInvalid       = errors.New("邮箱格式无效")
	ErrEmailSendFailed    = errors.New("邮件发送失败")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrUserNotFound       = errors.New("用户不存在")

	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")
	ErrEmailRecipientRejected    = errors.New("收件人地址被拒绝")

	ErrOtpInvalid          = errors.New("验证码无效")
	ErrOtpExpired          = errors.New("验证码已过期")
	ErrOtpTooFrequent      = errors.New("验证码发送过于频繁")
	ErrRefreshTokenInvalid = errors.New("刷新令牌无效或已过期")
	ErrResetTokenInvalid   = errors.New("重置令牌无效")
	ErrResetTokenExpired   = errors.New("重置令牌已过期")

	ErrProductNotFound     = errors.New("商品不存在")
	ErrProductNotAvailable = errors.New("商品不存在或已下架")
	ErrProductSlugExists   = errors.New("商品 slug 已存在")
	ErrProductInvalid      = errors.New("商品参数无效")
	ErrInsufficientStock   = errors.New("库存不足")

	ErrCategoryNotFound       = errors.New("分类不存在")
	ErrCategoryInvalid        = errors.New("分类参数无效")
	ErrCategoryParentNotFound = errors.New("父分类不存在")
	ErrCategorySlugExists     = errors.New("分类 slug 已存在")
	ErrCategoryHasChildren    = errors.New("分类存在子分类")
	ErrCategoryHasProducts    = errors.New("分类存在商品")

	ErrCartEmpty        = errors.New("购物车为空")
	ErrCartItemNotFound = errors.New("购物车项不存在")
	ErrInvalidOrderItem = errors.New("下单项无效")
	ErrAddressNotFound  = errors.New("地址不存在")
	ErrAddressInvalid   = errors.New("地址参数无效")
	ErrAddressNotOwned  = errors.New("地址不属于当前用户")

	ErrOrderNotFound         = errors.New("订单不存在")
	ErrOrderFetchFailed      = errors.New("订单查询失败")
	ErrOrderUpdateFailed     = errors.New("订单更新失败")
	ErrOrderStatusInvalid    = errors.New("订单状态流转无效")
	ErrOrderCancelShipped    = errors.New("已发货或已送达订单不可取消")
	ErrOrderCancelPaid       = errors.New("已支付订单不可取消")
	ErrPaymentMethodInvalid  = errors.New("支付方式无效")
	ErrPaymentGatewayFailed  = errors.New("支付网关请求失败")
	ErrPaymentVerifyFailed   = errors.New("支付校验失败")
	ErrPaymentCanceledByUser = errors.New("用户取消支付")

	ErrReviewExists     = errors.New("已评价过该商品")
	ErrReviewInvalid    = errors.New("评价参数无效")
	ErrReviewNotFound   = errors.New("评价不存在")
	ErrWishlistExists   = errors.New("已在心愿单中")
	ErrWishlistNotFound = errors.New("心愿单项不存在")
	ErrForbidden        = errors.New("无权访问")
	ErrGoogleAuthFailed = errors.New("Google 登录失败")
	ErrCaptchaRequired  = errors.New("验证码必填")
	ErrCaptchaInvalid   = errors.New("验证码错误")
)
