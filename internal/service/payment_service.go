package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/constants"
	"github.com/toranj-shop/internal/logger"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/payment/zarinpal"
	"github.com/toranj-shop/internal/repository"
)

// PaymentService 支付网关编排服务
type PaymentService struct {
	cfg          *config.Config
	orders       repository.OrderRepository
	users        repository.UserRepository
	orderService *OrderService
}

// NewPaymentService 创建支付服务
func NewPaymentService(cfg *config.Config, orders repository.OrderRepository, users repository.UserRepository, orderService *OrderService) *PaymentService {
	return &PaymentService{
		cfg:          cfg,
		orders:       orders,
		users:        users,
		orderService: orderService,
	}
}

// PaymentInitiation 发起支付结果
type PaymentInitiation struct {
	Offline    bool   `json:"offline"`     // 线下支付（货到付款/银行转账），无需跳转
	PaymentURL string `json:"payment_url"` // 收银台跳转地址
	Authority  string `json:"authority"`   // 网关支付凭据
}

// VerifyOutcome 支付核验结果
type VerifyOutcome struct {
	Order   *models.Order `json:"order"`
	RefID   string        `json:"ref_id"`
	Success bool          `json:"success"`
}

func (s *PaymentService) gatewayConfig() *zarinpal.Config {
	return &zarinpal.Config{
		MerchantID: s.cfg.Zarinpal.MerchantID,
		Sandbox:    s.cfg.Zarinpal.Sandbox,
		TimeoutMS:  s.cfg.Zarinpal.TimeoutMS,
		GatewayURL: s.cfg.Zarinpal.GatewayURL,
	}
}

func (s *PaymentService) callbackURL() string {
	if url := strings.TrimSpace(s.cfg.Zarinpal.CallbackURL); url != "" {
		return url
	}
	return strings.TrimRight(s.cfg.App.BaseURL, "/") + "/api/v1/payments/verify"
}

// Initiate 为订单发起支付
// 线下支付方式直接返回 offline 标记；网关方式写入 authority 并返回收银台地址
func (s *PaymentService) Initiate(ctx context.Context, userID, orderID uint) (*PaymentInitiation, error) {
	order, err := s.orderService.GetUserOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return nil, ErrOrderStatusInvalid
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderStatusInvalid
	}

	switch order.PaymentMethod {
	case constants.PaymentMethodCashOnDelivery, constants.PaymentMethodBankTransfer:
		return &PaymentInitiation{Offline: true}, nil
	case constants.PaymentMethodZarinpal:
	default:
		return nil, ErrPaymentMethodInvalid
	}

	var email string
	if user, err := s.users.GetByID(order.UserID); err == nil && user != nil {
		email = user.Email
	}

	result, err := zarinpal.RequestPayment(ctx, s.gatewayConfig(), zarinpal.CreateInput{
		Amount:      order.TotalAmount.IntPart(),
		Description: fmt.Sprintf("%s - %s", s.cfg.App.Name, order.OrderNo),
		CallbackURL: s.callbackURL(),
		Email:       email,
		Mobile:      order.ShippingPhone,
		OrderNo:     order.OrderNo,
	})
	if err != nil {
		logger.Errorw("payment_request_failed", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
		// 保留网关返回的原始错误信息，调用方可展示给用户
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}

	if err := s.orders.UpdateStatus(order.ID, map[string]interface{}{
		"gateway_authority": result.Authority,
	}); err != nil {
		return nil, err
	}
	logger.Infow("payment_requested", "order_id", order.ID, "order_no", order.OrderNo, "authority", result.Authority)

	return &PaymentInitiation{
		PaymentURL: result.PaymentURL,
		Authority:  result.Authority,
	}, nil
}

// Verify 处理网关回调核验
// 订单按 authority 定位；重复回调幂等返回成功
func (s *PaymentService) Verify(ctx context.Context, authority, status string) (*VerifyOutcome, error) {
	authority = strings.TrimSpace(authority)
	if authority == "" {
		return nil, ErrPaymentVerifyFailed
	}

	order, err := s.orders.GetByAuthority(authority)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.PaymentStatus == constants.PaymentStatusPaid {
		return &VerifyOutcome{Order: order, RefID: order.GatewayRefID, Success: true}, nil
	}

	if !strings.EqualFold(strings.TrimSpace(status), "OK") {
		if err := s.orderService.MarkPaymentFailed(order); err != nil {
			logger.Warnw("payment_fail_mark_failed", "order_id", order.ID, "error", err)
		}
		return &VerifyOutcome{Order: order}, ErrPaymentCanceledByUser
	}

	result, err := zarinpal.VerifyPayment(ctx, s.gatewayConfig(), authority, order.TotalAmount.IntPart())
	if err != nil {
		logger.Errorw("payment_verify_failed", "order_id", order.ID, "authority", authority, "error", err)
		if markErr := s.orderService.MarkPaymentFailed(order); markErr != nil {
			logger.Warnw("payment_fail_mark_failed", "order_id", order.ID, "error", markErr)
		}
		return &VerifyOutcome{Order: order}, ErrPaymentVerifyFailed
	}

	refID := fmt.Sprintf("%d", result.RefID)
	if err := s.orderService.MarkPaid(order, refID); err != nil {
		return nil, err
	}

	updated, err := s.orders.GetByID(order.ID)
	if err != nil {
		return nil, err
	}
	return &VerifyOutcome{Order: updated, RefID: refID, Success: true}, nil
}
