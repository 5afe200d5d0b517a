package public

import (
	"strconv"
	"strings"

	"github.com/toranj-shop/internal/http/response"
	"github.com/toranj-shop/internal/i18n"
	"github.com/toranj-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutItemRequest 结算请求中的显式下单项
type CheckoutItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest 结算下单请求
// items 缺省时按购物车结算
type CheckoutRequest struct {
	AddressID     uint                  `json:"address_id" binding:"required"`
	PaymentMethod string                `json:"payment_method" binding:"required"`
	Note          string                `json:"note"`
	Items         []CheckoutItemRequest `json:"items"`
}

// Checkout 从购物车结算下单
// 下单成功后按支付方式发起支付：线上支付返回收银台跳转地址，线下支付直接返回订单
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.OrderService.CreateOrder(userID, service.CreateOrderInput{
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		Items:         items,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	initiation, err := h.PaymentService.Initiate(c.Request.Context(), userID, order.ID)
	if err != nil {
		// 订单已落库，报错返回后前端可对该订单重试支付
		requestLog(c).Warnw("checkout_payment_initiate_failed",
			"order_id", order.ID,
			"error", err,
		)
		respondPaymentInitiateError(c, err)
		return
	}

	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "msg.order_created"), gin.H{
		"order":   order,
		"payment": initiation,
	})
}

// PayOrder 为待支付订单重新发起支付
func (h *Handler) PayOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	initiation, err := h.PaymentService.Initiate(c.Request.Context(), userID, uint(orderID))
	if err != nil {
		respondPaymentInitiateError(c, err)
		return
	}

	response.Success(c, initiation)
}

// VerifyPayment 支付网关回调核验
// 网关以 GET 携带 Authority 与 Status 把浏览器重定向回来，
// 响应必须是给用户看的 HTML 中转页，不能是 JSON
func (h *Handler) VerifyPayment(c *gin.Context) {
	authority := strings.TrimSpace(c.Query("Authority"))
	status := strings.TrimSpace(c.Query("Status"))
	if authority == "" {
		h.renderPaymentResult(c, paymentResultView{RedirectURL: h.paymentRedirectURL(0)})
		return
	}

	outcome, err := h.PaymentService.Verify(c.Request.Context(), authority, status)
	if err != nil || outcome == nil || !outcome.Success {
		requestLog(c).Warnw("payment_verify_rejected", "authority", authority, "error", err)
		view := paymentResultView{RedirectURL: h.paymentRedirectURL(0)}
		if outcome != nil && outcome.Order != nil {
			view.OrderNo = outcome.Order.OrderNo
			view.RedirectURL = h.paymentRedirectURL(outcome.Order.ID)
		}
		h.renderPaymentResult(c, view)
		return
	}

	h.renderPaymentResult(c, paymentResultView{
		Success:     true,
		OrderNo:     outcome.Order.OrderNo,
		RefID:       outcome.RefID,
		RedirectURL: h.paymentRedirectURL(outcome.Order.ID),
	})
}
