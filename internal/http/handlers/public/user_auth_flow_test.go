package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/http/response"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/provider"
	"github.com/toranj-shop/internal/repository"
	"github.com/toranj-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type authFlowFixture struct {
	handler *Handler
	users   repository.UserRepository
	engine  *gin.Engine
}

func setupAuthFlowTest(t *testing.T) *authFlowFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.PasswordResetToken{},
		&models.OtpCode{},
	); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })

	cfg := &config.Config{}
	cfg.App.FrontendURL = "https://shop.example"
	cfg.UserJWT.SecretKey = "test-user-jwt-secret"
	cfg.UserJWT.AccessExpireHours = 1
	cfg.UserJWT.RefreshExpireHours = 24
	cfg.Otp.ExpireMinutes = 5
	cfg.Otp.Length = 6
	cfg.Otp.SendIntervalSeconds = 60
	cfg.Google.Enabled = true
	cfg.Google.ClientID = "client-123"
	cfg.Google.ClientSecret = "secret-456"
	cfg.Google.RedirectURL = "http://localhost:8080/api/v1/auth/google/callback"

	users := repository.NewUserRepository(db)
	authService := service.NewUserAuthService(
		cfg,
		users,
		repository.NewRefreshTokenRepository(db),
		repository.NewPasswordResetTokenRepository(db),
		repository.NewOtpCodeRepository(db),
		service.NewEmailService(&config.EmailConfig{Enabled: false}, "Toranj"),
	)

	handler := New(&provider.Container{
		Config:          cfg,
		UserRepo:        users,
		UserAuthService: authService,
	})

	engine := gin.New()
	engine.GET("/api/v1/auth/google", handler.GoogleAuthRedirect)
	engine.GET("/api/v1/auth/google/callback", handler.GoogleCallback)
	engine.POST("/api/v1/auth/otp/send", handler.SendOtp)

	return &authFlowFixture{handler: handler, users: users, engine: engine}
}

func (f *authFlowFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestGoogleAuthRedirectsToConsent(t *testing.T) {
	f := setupAuthFlowTest(t)

	w := f.do(t, http.MethodGet, "/api/v1/auth/google", "")
	if w.Code != http.StatusFound {
		t.Fatalf("want 302 got %d", w.Code)
	}
	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse consent location failed: %v", err)
	}
	if location.Host != "accounts.google.com" {
		t.Fatalf("want consent on accounts.google.com got %s", location.Host)
	}
	query := location.Query()
	if query.Get("client_id") != "client-123" {
		t.Fatalf("client_id missing in consent url: %s", location)
	}
	if query.Get("state") == "" {
		t.Fatalf("consent url must carry a state nonce: %s", location)
	}
}

func TestGoogleAuthRedirectDisabled(t *testing.T) {
	f := setupAuthFlowTest(t)
	f.handler.Config.Google.Enabled = false

	w := f.do(t, http.MethodGet, "/api/v1/auth/google", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want envelope 200 got %d", w.Code)
	}
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != response.CodeBadRequest {
		t.Fatalf("want business code %d got %d", response.CodeBadRequest, body.StatusCode)
	}
}

func TestGoogleCallbackFailureRendersErrorPage(t *testing.T) {
	f := setupAuthFlowTest(t)

	for _, target := range []string{
		"/api/v1/auth/google/callback?error=access_denied",
		"/api/v1/auth/google/callback?state=whatever&code=",
	} {
		w := f.do(t, http.MethodGet, target, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: want 200 got %d", target, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("%s: want html got %s", target, ct)
		}
		page := w.Body.String()
		if !strings.Contains(page, "ورود با گوگل ناموفق بود") {
			t.Fatalf("%s: error heading missing:\n%s", target, page)
		}
		if !strings.Contains(page, "https://shop.example/login") {
			t.Fatalf("%s: frontend login redirect missing:\n%s", target, page)
		}
	}
}

func TestSendOtpResponseShapeHidesAccountState(t *testing.T) {
	f := setupAuthFlowTest(t)

	disabled := &models.User{Email: "basteh@toranj.shop", Role: "user", Locale: "fa-IR", IsActive: false}
	if err := f.users.Create(disabled); err != nil {
		t.Fatalf("create disabled user failed: %v", err)
	}

	// 邮件服务未启用、账号被禁用：响应都必须与成功同形
	for _, email := range []string{"basteh@toranj.shop", "nafar@toranj.shop"} {
		w := f.do(t, http.MethodPost, "/api/v1/auth/otp/send", fmt.Sprintf(`{"email":%q}`, email))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: want 200 got %d", email, w.Code)
		}
		var body response.Response
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body failed: %v", email, err)
		}
		if body.StatusCode != 0 {
			t.Fatalf("%s: send failure leaked through envelope: %+v", email, body)
		}
		data, _ := body.Data.(map[string]interface{})
		if data["sent"] != true {
			t.Fatalf("%s: want sent=true got %v", email, body.Data)
		}
	}

	// 格式非法仍然按参数错误处理
	w := f.do(t, http.MethodPost, "/api/v1/auth/otp/send", `{"email":"not-an-email"}`)
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != response.CodeBadRequest {
		t.Fatalf("want business code %d got %d", response.CodeBadRequest, body.StatusCode)
	}
}
