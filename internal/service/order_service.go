package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/constants"
	"github.com/toranj-shop/internal/logger"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/queue"
	"github.com/toranj-shop/internal/repository"
)

// allowedTransitions 订单状态机
// 已取消 / 已退款为终态
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusRefunded: true,
	},
	constants.OrderStatusCancelled: {},
	constants.OrderStatusRefunded:  {},
}

// CanTransitionOrderStatus 判断订单状态流转是否合法
func CanTransitionOrderStatus(from, to string) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// OrderService 订单业务服务
type OrderService struct {
	cfg         *config.Config
	orders      repository.OrderRepository
	products    repository.ProductRepository
	carts       repository.CartRepository
	addresses   repository.AddressRepository
	queueClient *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(
	cfg *config.Config,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	addresses repository.AddressRepository,
	queueClient *queue.Client,
) *OrderService {
	return &OrderService{
		cfg:         cfg,
		orders:      orders,
		products:    products,
		carts:       carts,
		addresses:   addresses,
		queueClient: queueClient,
	}
}

// OrderItemInput 显式下单项
type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput 下单输入
// Items 为空时按购物车结算，显式给出时购物车不参与也不被清空
type CreateOrderInput struct {
	AddressID     uint
	PaymentMethod string
	Note          string
	Items         []OrderItemInput
}

// CreateOrder 创建订单
// 库存扣减、金额快照、订单落库与清空购物车在同一事务内完成
func (s *OrderService) CreateOrder(userID uint, input CreateOrderInput) (*models.Order, error) {
	method := strings.ToUpper(strings.TrimSpace(input.PaymentMethod))
	switch method {
	case constants.PaymentMethodZarinpal, constants.PaymentMethodCashOnDelivery, constants.PaymentMethodBankTransfer:
	default:
		return nil, ErrPaymentMethodInvalid
	}

	lines := input.Items
	var cartID uint
	if len(lines) > 0 {
		for _, line := range lines {
			if line.ProductID == 0 || line.Quantity <= 0 {
				return nil, ErrInvalidOrderItem
			}
		}
	} else {
		cart, err := s.carts.GetByUser(userID)
		if err != nil {
			return nil, err
		}
		if cart == nil || len(cart.Items) == 0 {
			return nil, ErrCartEmpty
		}
		cartID = cart.ID
		lines = make([]OrderItemInput, 0, len(cart.Items))
		for i := range cart.Items {
			lines = append(lines, OrderItemInput{ProductID: cart.Items[i].ProductID, Quantity: cart.Items[i].Quantity})
		}
	}

	address, err := s.addresses.GetByIDAndUser(input.AddressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	var created *models.Order
	var lastErr error
	for attempt := 0; attempt < constants.OrderNoCreateMaxAttempts; attempt++ {
		created, lastErr = s.createOrderOnce(userID, lines, cartID, address, method, input.Note)
		if lastErr == nil {
			break
		}
		if !isDuplicateKeyError(lastErr) {
			return nil, lastErr
		}
		logger.Warnw("order_no_conflict_retry", "user_id", userID, "attempt", attempt+1)
	}
	if lastErr != nil {
		return nil, lastErr
	}

	if created.Status == constants.OrderStatusPending && s.queueClient != nil {
		timeout := time.Duration(constants.OrderPendingTimeoutMinutes) * time.Minute
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: created.ID}, timeout); err != nil {
			logger.Warnw("order_timeout_enqueue_failed", "order_id", created.ID, "error", err)
		}
	}

	return s.orders.GetByID(created.ID)
}

func (s *OrderService) createOrderOnce(userID uint, lines []OrderItemInput, cartID uint, address *models.Address, method, note string) (*models.Order, error) {
	var order *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)
		cartRepo := s.carts.WithTx(tx)

		subtotal := decimal.Zero
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))

		for _, orderLine := range lines {
			product, err := productRepo.GetByID(orderLine.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsActive {
				return ErrProductNotAvailable
			}

			affected, err := productRepo.DecrementStock(product.ID, orderLine.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientStock
			}

			unit := product.Price.Decimal.Round(2)
			discounted := discountedUnitPrice(product)
			line := discounted.Mul(decimal.NewFromInt(int64(orderLine.Quantity)))

			items = append(items, models.OrderItem{
				ProductID:       product.ID,
				ProductName:     product.Name,
				UnitPrice:       models.NewMoneyFromDecimal(unit),
				DiscountPercent: product.DiscountPercent,
				Quantity:        orderLine.Quantity,
				TotalPrice:      models.NewMoneyFromDecimal(line),
			})
			subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(orderLine.Quantity))))
			total = total.Add(line)
		}

		orderNo, err := s.generateOrderNo(orderRepo)
		if err != nil {
			return err
		}

		order = &models.Order{
			OrderNo:          orderNo,
			UserID:           userID,
			Status:           constants.OrderStatusPending,
			PaymentMethod:    method,
			PaymentStatus:    constants.PaymentStatusUnpaid,
			Subtotal:         models.NewMoneyFromDecimal(subtotal),
			DiscountAmount:   models.NewMoneyFromDecimal(subtotal.Sub(total)),
			TotalAmount:      models.NewMoneyFromDecimal(total),
			ShippingName:     address.ReceiverName,
			ShippingPhone:    address.Phone,
			ShippingProvince: address.Province,
			ShippingCity:     address.City,
			ShippingPostal:   address.PostalCode,
			ShippingAddress:  address.AddressLine,
			Note:             strings.TrimSpace(note),
		}
		if err := orderRepo.Create(order, items); err != nil {
			return err
		}

		if cartID == 0 {
			return nil
		}
		return cartRepo.ClearByCart(cartID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// generateOrderNo 生成当日序号订单编号（ORD-YYYYMMDD-NNNNN）
// 唯一索引兜底并发冲突，冲突由调用方重试
func (s *OrderService) generateOrderNo(repo repository.OrderRepository) (string, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	count, err := repo.CountCreatedBetween(dayStart, dayEnd)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%0*d",
		constants.OrderNoPrefix,
		now.Format("20060102"),
		constants.OrderNoSequenceWidth,
		count+1,
	), nil
}

// GetUserOrder 获取用户自己的订单详情
func (s *OrderService) GetUserOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders 获取用户订单列表
func (s *OrderService) ListUserOrders(userID uint, status string, page, pageSize int) ([]models.Order, int64, error) {
	return s.orders.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.ToUpper(strings.TrimSpace(status)),
	})
}

// GetAdminOrder 获取后台订单详情
func (s *OrderService) GetAdminOrder(orderID uint) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListAdminOrders 获取后台订单列表
func (s *OrderService) ListAdminOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orders.ListAdmin(filter)
}

// CancelByUser 用户取消订单
// 已发货 / 已送达不可取消；已支付需走退款流程；取消时恢复库存
func (s *OrderService) CancelByUser(userID, orderID uint) (*models.Order, error) {
	order, err := s.GetUserOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case constants.OrderStatusShipped, constants.OrderStatusDelivered:
		return nil, ErrOrderCancelShipped
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return nil, ErrOrderCancelPaid
	}
	if !CanTransitionOrderStatus(order.Status, constants.OrderStatusCancelled) {
		return nil, ErrOrderStatusInvalid
	}

	if err := s.cancelOrder(order); err != nil {
		return nil, err
	}
	s.enqueueStatusEmail(order.ID, constants.OrderStatusCancelled)
	return s.orders.GetByID(order.ID)
}

// CancelTimeout 超时未支付订单自动取消（队列任务调用）
// 订单已支付或已流转时静默跳过
func (s *OrderService) CancelTimeout(orderID uint) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusUnpaid {
		return nil
	}
	if err := s.cancelOrder(order); err != nil {
		return err
	}
	logger.Infow("order_timeout_cancelled", "order_id", order.ID, "order_no", order.OrderNo)
	s.enqueueStatusEmail(order.ID, constants.OrderStatusCancelled)
	return nil
}

// cancelOrder 取消订单并恢复库存，单事务执行
func (s *OrderService) cancelOrder(order *models.Order) error {
	now := time.Now()
	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		// 以当前事务内状态为准，防止并发重复取消导致库存重复恢复
		current, err := orderRepo.GetByID(order.ID)
		if err != nil {
			return err
		}
		if current == nil || current.Status == constants.OrderStatusCancelled {
			return nil
		}

		if err := orderRepo.UpdateStatus(order.ID, map[string]interface{}{
			"status":      constants.OrderStatusCancelled,
			"canceled_at": &now,
		}); err != nil {
			return err
		}

		for i := range current.Items {
			item := &current.Items[i]
			if _, err := productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkPaid 标记订单已支付
// 幂等：重复回调直接返回；PENDING 订单支付后自动进入 CONFIRMED
func (s *OrderService) MarkPaid(order *models.Order, refID string) error {
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": constants.PaymentStatusPaid,
		"gateway_ref_id": strings.TrimSpace(refID),
		"paid_at":        &now,
	}
	nextStatus := order.Status
	if order.Status == constants.OrderStatusPending {
		nextStatus = constants.OrderStatusConfirmed
		updates["status"] = nextStatus
	}

	if err := s.orders.UpdateStatus(order.ID, updates); err != nil {
		return err
	}
	logger.Infow("order_paid", "order_id", order.ID, "order_no", order.OrderNo, "ref_id", refID)
	s.enqueueStatusEmail(order.ID, nextStatus)
	return nil
}

// MarkPaymentFailed 标记订单支付失败
func (s *OrderService) MarkPaymentFailed(order *models.Order) error {
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return nil
	}
	return s.orders.UpdateStatus(order.ID, map[string]interface{}{
		"payment_status": constants.PaymentStatusFailed,
	})
}

// UpdateStatusInput 后台更新订单状态输入
type UpdateStatusInput struct {
	Status       string
	TrackingCode *string
	AdminNote    *string
}

// UpdateStatus 后台更新订单状态
// 校验状态机流转并打点关键时间戳；取消时恢复库存
func (s *OrderService) UpdateStatus(orderID uint, input UpdateStatusInput) (*models.Order, error) {
	order, err := s.GetAdminOrder(orderID)
	if err != nil {
		return nil, err
	}

	next := strings.ToUpper(strings.TrimSpace(input.Status))
	if next != order.Status {
		if !CanTransitionOrderStatus(order.Status, next) {
			return nil, ErrOrderStatusInvalid
		}
	}

	if next == constants.OrderStatusCancelled && order.Status != constants.OrderStatusCancelled {
		if err := s.cancelOrder(order); err != nil {
			return nil, err
		}
		if input.AdminNote != nil {
			if err := s.orders.UpdateStatus(order.ID, map[string]interface{}{"admin_note": strings.TrimSpace(*input.AdminNote)}); err != nil {
				return nil, err
			}
		}
		s.enqueueStatusEmail(order.ID, next)
		return s.orders.GetByID(order.ID)
	}

	now := time.Now()
	updates := map[string]interface{}{}
	if next != order.Status {
		updates["status"] = next
		switch next {
		case constants.OrderStatusShipped:
			updates["shipped_at"] = &now
		case constants.OrderStatusDelivered:
			updates["delivered_at"] = &now
		case constants.OrderStatusRefunded:
			updates["payment_status"] = constants.PaymentStatusRefunded
		}
	}
	if input.TrackingCode != nil {
		updates["tracking_code"] = strings.TrimSpace(*input.TrackingCode)
	}
	if input.AdminNote != nil {
		updates["admin_note"] = strings.TrimSpace(*input.AdminNote)
	}
	if len(updates) == 0 {
		return order, nil
	}

	if err := s.orders.UpdateStatus(order.ID, updates); err != nil {
		return nil, err
	}
	if next != order.Status {
		s.enqueueStatusEmail(order.ID, next)
	}
	return s.orders.GetByID(order.ID)
}

func (s *OrderService) enqueueStatusEmail(orderID uint, status string) {
	if err := enqueueOrderStatusEmailTask(s.queueClient, orderID, status); err != nil {
		logger.Warnw("order_status_email_enqueue_failed", "order_id", orderID, "status", status, "error", err)
	}
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate key") ||
		strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "unique failed")
}
