package zarinpal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("zarinpal config invalid")
	ErrRequestFailed   = errors.New("zarinpal request failed")
	ErrResponseInvalid = errors.New("zarinpal response invalid")
	ErrVerifyFailed    = errors.New("zarinpal verify failed")
)

// 网关返回码常量
const (
	CodeSuccess         = 100 // 成功
	CodeAlreadyVerified = 101 // 已核验过（幂等重放）
)

// 网关地址常量
const (
	ProductionBaseURL = "https://payment.zarinpal.com"
	SandboxBaseURL    = "https://sandbox.zarinpal.com"
)

// Config 网关配置
type Config struct {
	MerchantID string `json:"merchant_id"` // 商户号（36 位 UUID）
	Sandbox    bool   `json:"sandbox"`     // 是否沙箱环境
	TimeoutMS  int    `json:"timeout_ms"`  // HTTP 超时（毫秒）
	GatewayURL string `json:"gateway_url"` // 自定义网关地址（留空则按环境选择）
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.MerchantID) == "" {
		return fmt.Errorf("%w: merchant_id is required", ErrConfigInvalid)
	}
	return nil
}

// BaseURL 当前环境网关地址
func (c *Config) BaseURL() string {
	if c == nil {
		return ProductionBaseURL
	}
	if gateway := strings.TrimSpace(c.GatewayURL); gateway != "" {
		return strings.TrimRight(gateway, "/")
	}
	if c.Sandbox {
		return SandboxBaseURL
	}
	return ProductionBaseURL
}

func (c *Config) timeout() time.Duration {
	if c != nil && c.TimeoutMS > 0 {
		return time.Duration(c.TimeoutMS) * time.Millisecond
	}
	return 15 * time.Second
}

// CreateInput 发起支付输入
type CreateInput struct {
	Amount      int64  // 金额（里亚尔）
	Description string // 订单描述
	CallbackURL string // 支付完成回跳地址
	Email       string // 付款人邮箱（可选）
	Mobile      string // 付款人手机号（可选）
	OrderNo     string // 商户订单编号（写入 metadata）
}

// CreateResult 发起支付结果
type CreateResult struct {
	Authority  string                 // 网关支付凭据，回调按此定位订单
	PaymentURL string                 // 收银台跳转地址
	Raw        map[string]interface{} // 原始响应
}

// VerifyResult 核验支付结果
type VerifyResult struct {
	Code            int                    // 网关返回码
	RefID           int64                  // 交易参考号
	CardPan         string                 // 付款卡号掩码
	AlreadyVerified bool                   // 本次为重复核验
	Raw             map[string]interface{} // 原始响应
}

// RequestPayment 发起支付请求
func RequestPayment(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.Amount <= 0 || strings.TrimSpace(input.CallbackURL) == "" {
		return nil, fmt.Errorf("%w: amount and callback_url are required", ErrConfigInvalid)
	}

	metadata := map[string]interface{}{}
	if strings.TrimSpace(input.Email) != "" {
		metadata["email"] = strings.TrimSpace(input.Email)
	}
	if strings.TrimSpace(input.Mobile) != "" {
		metadata["mobile"] = strings.TrimSpace(input.Mobile)
	}
	if strings.TrimSpace(input.OrderNo) != "" {
		metadata["order_id"] = strings.TrimSpace(input.OrderNo)
	}

	params := map[string]interface{}{
		"merchant_id":  cfg.MerchantID,
		"amount":       input.Amount,
		"description":  input.Description,
		"callback_url": strings.TrimSpace(input.CallbackURL),
	}
	if len(metadata) > 0 {
		params["metadata"] = metadata
	}

	endpoint := cfg.BaseURL() + "/pg/v4/payment/request.json"
	respBytes, err := postJSON(ctx, endpoint, params, cfg.timeout())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		Data struct {
			Code      int    `json:"code"`
			Message   string `json:"message"`
			Authority string `json:"authority"`
		} `json:"data"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.Data.Code != CodeSuccess || resp.Data.Authority == "" {
		return nil, fmt.Errorf("%w: code=%d message=%s", ErrResponseInvalid, resp.Data.Code, resp.Data.Message)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)

	return &CreateResult{
		Authority:  resp.Data.Authority,
		PaymentURL: fmt.Sprintf("%s/pg/StartPay/%s", cfg.BaseURL(), resp.Data.Authority),
		Raw:        raw,
	}, nil
}

// VerifyPayment 核验支付
// code 100 为首次核验成功，101 为重复核验（同样视为已支付）
func VerifyPayment(ctx context.Context, cfg *Config, authority string, amount int64) (*VerifyResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	authority = strings.TrimSpace(authority)
	if authority == "" || amount <= 0 {
		return nil, fmt.Errorf("%w: authority and amount are required", ErrConfigInvalid)
	}

	params := map[string]interface{}{
		"merchant_id": cfg.MerchantID,
		"amount":      amount,
		"authority":   authority,
	}

	endpoint := cfg.BaseURL() + "/pg/v4/payment/verify.json"
	respBytes, err := postJSON(ctx, endpoint, params, cfg.timeout())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		Data struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			RefID   int64  `json:"ref_id"`
			CardPan string `json:"card_pan"`
		} `json:"data"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)

	result := &VerifyResult{
		Code:            resp.Data.Code,
		RefID:           resp.Data.RefID,
		CardPan:         resp.Data.CardPan,
		AlreadyVerified: resp.Data.Code == CodeAlreadyVerified,
		Raw:             raw,
	}
	if resp.Data.Code != CodeSuccess && resp.Data.Code != CodeAlreadyVerified {
		return result, fmt.Errorf("%w: code=%d message=%s", ErrVerifyFailed, resp.Data.Code, resp.Data.Message)
	}
	return result, nil
}

func postJSON(ctx context.Context, endpoint string, params map[string]interface{}, timeout time.Duration) ([]byte, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(payload) > 0 {
			return payload, nil
		}
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
