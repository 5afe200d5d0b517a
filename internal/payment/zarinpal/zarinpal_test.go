package zarinpal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testMerchantID = "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"

func newGatewayServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Config) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := &Config{MerchantID: testMerchantID, GatewayURL: server.URL}
	return server, cfg
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid for nil config got %v", err)
	}
	if err := ValidateConfig(&Config{MerchantID: "  "}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid for blank merchant got %v", err)
	}
	if err := ValidateConfig(&Config{MerchantID: testMerchantID}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestBaseURLSelection(t *testing.T) {
	var nilConfig *Config
	if got := nilConfig.BaseURL(); got != ProductionBaseURL {
		t.Fatalf("nil config: want production url got %s", got)
	}
	if got := (&Config{}).BaseURL(); got != ProductionBaseURL {
		t.Fatalf("default: want production url got %s", got)
	}
	if got := (&Config{Sandbox: true}).BaseURL(); got != SandboxBaseURL {
		t.Fatalf("sandbox: want sandbox url got %s", got)
	}
	if got := (&Config{GatewayURL: "http://127.0.0.1:8090/"}).BaseURL(); got != "http://127.0.0.1:8090" {
		t.Fatalf("override: trailing slash should be trimmed, got %s", got)
	}
}

func TestRequestPaymentSuccess(t *testing.T) {
	var captured map[string]interface{}
	_, cfg := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pg/v4/payment/request.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"code":100,"message":"Success","authority":"A0000012345"},"errors":[]}`))
	})

	result, err := RequestPayment(context.Background(), cfg, CreateInput{
		Amount:      45_000_000,
		Description: "پرداخت سفارش ORD-20260831-00001",
		CallbackURL: "https://toranj.shop/api/v1/payments/verify",
		Mobile:      "09121234567",
		OrderNo:     "ORD-20260831-00001",
	})
	if err != nil {
		t.Fatalf("request payment failed: %v", err)
	}
	if result.Authority != "A0000012345" {
		t.Fatalf("want authority A0000012345 got %s", result.Authority)
	}
	wantURL := cfg.BaseURL() + "/pg/StartPay/A0000012345"
	if result.PaymentURL != wantURL {
		t.Fatalf("want payment url %s got %s", wantURL, result.PaymentURL)
	}

	if captured["merchant_id"] != testMerchantID {
		t.Fatalf("merchant_id not sent: %v", captured["merchant_id"])
	}
	metadata, ok := captured["metadata"].(map[string]interface{})
	if !ok {
		t.Fatalf("metadata missing from request: %v", captured)
	}
	if metadata["order_id"] != "ORD-20260831-00001" || metadata["mobile"] != "09121234567" {
		t.Fatalf("unexpected metadata: %v", metadata)
	}
}

func TestRequestPaymentGatewayError(t *testing.T) {
	_, cfg := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{},"errors":{"code":-9,"message":"The input params invalid"}}`))
	})

	if _, err := RequestPayment(context.Background(), cfg, CreateInput{
		Amount:      1000,
		CallbackURL: "https://toranj.shop/api/v1/payments/verify",
	}); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("want ErrResponseInvalid got %v", err)
	}
}

func TestRequestPaymentInputValidation(t *testing.T) {
	cfg := &Config{MerchantID: testMerchantID}

	if _, err := RequestPayment(context.Background(), cfg, CreateInput{Amount: 0, CallbackURL: "https://x"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid for zero amount got %v", err)
	}
	if _, err := RequestPayment(context.Background(), cfg, CreateInput{Amount: 1000}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid for missing callback got %v", err)
	}
	if _, err := RequestPayment(context.Background(), nil, CreateInput{Amount: 1000, CallbackURL: "https://x"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid for nil config got %v", err)
	}
}

func TestVerifyPaymentSuccess(t *testing.T) {
	_, cfg := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pg/v4/payment/verify.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"code":100,"message":"Verified","ref_id":201029308520,"card_pan":"502229******1234"},"errors":[]}`))
	})

	result, err := VerifyPayment(context.Background(), cfg, "A0000012345", 45_000_000)
	if err != nil {
		t.Fatalf("verify payment failed: %v", err)
	}
	if result.Code != CodeSuccess || result.RefID != 201029308520 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.AlreadyVerified {
		t.Fatal("first verification should not be flagged as replay")
	}
	if result.CardPan != "502229******1234" {
		t.Fatalf("want masked card pan got %s", result.CardPan)
	}
}

func TestVerifyPaymentAlreadyVerified(t *testing.T) {
	_, cfg := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"code":101,"message":"Verified","ref_id":201029308520},"errors":[]}`))
	})

	result, err := VerifyPayment(context.Background(), cfg, "A0000012345", 45_000_000)
	if err != nil {
		t.Fatalf("replayed verification should still succeed: %v", err)
	}
	if !result.AlreadyVerified {
		t.Fatal("code 101 should set AlreadyVerified")
	}
}

func TestVerifyPaymentFailedCode(t *testing.T) {
	_, cfg := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"code":-51,"message":"Session is not valid"},"errors":[]}`))
	})

	result, err := VerifyPayment(context.Background(), cfg, "A0000012345", 45_000_000)
	if !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("want ErrVerifyFailed got %v", err)
	}
	if result == nil || result.Code != -51 {
		t.Fatalf("failed verify should still return the gateway code, got %+v", result)
	}
}

func TestVerifyPaymentInputValidation(t *testing.T) {
	cfg := &Config{MerchantID: testMerchantID}

	if _, err := VerifyPayment(context.Background(), cfg, "  ", 1000); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid for blank authority got %v", err)
	}
	if _, err := VerifyPayment(context.Background(), cfg, "A0000012345", 0); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("want ErrConfigInvalid for zero amount got %v", err)
	}
}
