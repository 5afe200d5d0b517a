package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type userAuthFixture struct {
	svc           *UserAuthService
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	resetTokens   repository.PasswordResetTokenRepository
	otpCodes      repository.OtpCodeRepository
}

func setupUserAuthTest(t *testing.T) *userAuthFixture {
	t.Helper()

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
	cfg.UserJWT.SecretKey = "test-user-jwt-secret"
	cfg.UserJWT.AccessExpireHours = 1
	cfg.UserJWT.RefreshExpireHours = 24
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Security.Password.MinLength = 8
	cfg.Security.Password.RequireNumber = true
	cfg.Otp.ExpireMinutes = 5
	cfg.Otp.Length = 6
	cfg.Otp.SendIntervalSeconds = 60

	users := repository.NewUserRepository(db)
	refreshTokens := repository.NewRefreshTokenRepository(db)
	resetTokens := repository.NewPasswordResetTokenRepository(db)
	otpCodes := repository.NewOtpCodeRepository(db)
	email := NewEmailService(&config.EmailConfig{Enabled: false}, "Toranj")

	return &userAuthFixture{
		svc:           NewUserAuthService(cfg, users, refreshTokens, resetTokens, otpCodes, email),
		users:         users,
		refreshTokens: refreshTokens,
		resetTokens:   resetTokens,
		otpCodes:      otpCodes,
	}
}

func (f *userAuthFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	user, _, err := f.svc.Register(RegisterInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	f := setupUserAuthTest(t)

	user, pair, err := f.svc.Register(RegisterInput{
		Email:     " Sara@Toranj.Shop ",
		Password:  "secret-pass-1",
		FirstName: " سارا ",
		Locale:    "fa-IR",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "sara@toranj.shop" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.FirstName != "سارا" {
		t.Fatalf("first name should be trimmed, got %q", user.FirstName)
	}

	claims, err := f.svc.ParseUserJWT(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.TokenType != "access" {
		t.Fatalf("unexpected access claims: %+v", claims)
	}
	refreshClaims, err := f.svc.ParseUserJWT(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh token failed: %v", err)
	}
	if refreshClaims.TokenType != "refresh" || refreshClaims.ID == "" {
		t.Fatalf("unexpected refresh claims: %+v", refreshClaims)
	}

	if _, _, err := f.svc.Register(RegisterInput{Email: "sara@toranj.shop", Password: "secret-pass-1"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("want ErrEmailExists got %v", err)
	}
	if _, _, err := f.svc.Register(RegisterInput{Email: "weak@toranj.shop", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
	if _, _, err := f.svc.Register(RegisterInput{Email: "not-an-email", Password: "secret-pass-1"}); !errors.Is(err, ErrEmailInvalid) {
		t.Fatalf("want ErrEmailInvalid got %v", err)
	}

	logged, _, err := f.svc.Login("sara@toranj.shop", "secret-pass-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.LastLoginAt == nil {
		t.Fatalf("last_login_at should be stamped")
	}

	if _, _, err := f.svc.Login("sara@toranj.shop", "wrong-pass-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
	if _, _, err := f.svc.Login("ghost@toranj.shop", "secret-pass-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials for unknown email got %v", err)
	}

	logged.IsActive = false
	if err := f.users.Update(logged); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, err := f.svc.Login("sara@toranj.shop", "secret-pass-1"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("want ErrAccountDisabled got %v", err)
	}
}

func TestSendOtpCodeThrottleAndCompensation(t *testing.T) {
	f := setupUserAuthTest(t)

	// 邮件服务未启用：验证码和占位账号都不能落库残留
	if err := f.svc.SendOtpCode("otp@toranj.shop", "fa-IR"); !errors.Is(err, ErrEmailSendFailed) {
		t.Fatalf("want ErrEmailSendFailed got %v", err)
	}
	left, err := f.otpCodes.GetLatestByEmail("otp@toranj.shop")
	if err != nil {
		t.Fatalf("get latest otp failed: %v", err)
	}
	if left != nil {
		t.Fatalf("otp record should be compensated after send failure")
	}
	user, err := f.users.GetByEmail("otp@toranj.shop")
	if err != nil {
		t.Fatalf("get placeholder user failed: %v", err)
	}
	if user != nil {
		t.Fatalf("placeholder user should be compensated after send failure")
	}
	// 邮箱没有被残留记录占用，之后仍可正常注册
	if _, _, err := f.svc.Register(RegisterInput{Email: "otp@toranj.shop", Password: "secret-pass-1"}); err != nil {
		t.Fatalf("register after compensation failed: %v", err)
	}

	// 已存在的账号不受发送失败影响
	if err := f.svc.SendOtpCode("otp@toranj.shop", "fa-IR"); !errors.Is(err, ErrEmailSendFailed) {
		t.Fatalf("want ErrEmailSendFailed got %v", err)
	}
	if existing, err := f.users.GetByEmail("otp@toranj.shop"); err != nil || existing == nil {
		t.Fatalf("registered user must survive send failure, err=%v", err)
	}

	// 发送间隔内重复请求被限流
	if err := f.otpCodes.Create(&models.OtpCode{
		Email:     "otp@toranj.shop",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}); err != nil {
		t.Fatalf("seed otp failed: %v", err)
	}
	if err := f.svc.SendOtpCode("otp@toranj.shop", "fa-IR"); !errors.Is(err, ErrOtpTooFrequent) {
		t.Fatalf("want ErrOtpTooFrequent got %v", err)
	}
}

func TestVerifyOtpCodeLifecycle(t *testing.T) {
	f := setupUserAuthTest(t)

	user := &models.User{Email: "login@toranj.shop", Role: "user", Locale: "fa-IR", IsActive: true}
	if err := f.users.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := f.otpCodes.Create(&models.OtpCode{
		Email:     "login@toranj.shop",
		Code:      "654321",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}); err != nil {
		t.Fatalf("seed otp failed: %v", err)
	}

	if _, _, _, err := f.svc.VerifyOtpCode("login@toranj.shop", "000000"); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("want ErrOtpInvalid for wrong code got %v", err)
	}

	verified, pair, isNewUser, err := f.svc.VerifyOtpCode("login@toranj.shop", "654321")
	if err != nil {
		t.Fatalf("verify otp failed: %v", err)
	}
	if !isNewUser {
		t.Fatalf("first verification should report new user")
	}
	if !verified.EmailVerified || verified.LastLoginAt == nil {
		t.Fatalf("verification flags not set: %+v", verified)
	}
	if pair == nil || pair.AccessToken == "" {
		t.Fatalf("token pair should be issued")
	}

	// 验证码一次性，复用直接拒绝
	if _, _, _, err := f.svc.VerifyOtpCode("login@toranj.shop", "654321"); !errors.Is(err, ErrOtpInvalid) {
		t.Fatalf("want ErrOtpInvalid on reuse got %v", err)
	}

	// 过期验证码
	if err := f.otpCodes.Create(&models.OtpCode{
		Email:     "login@toranj.shop",
		Code:      "111111",
		ExpiresAt: time.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("seed expired otp failed: %v", err)
	}
	if _, _, _, err := f.svc.VerifyOtpCode("login@toranj.shop", "111111"); !errors.Is(err, ErrOtpExpired) {
		t.Fatalf("want ErrOtpExpired got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	f := setupUserAuthTest(t)
	f.register(t, "rotate@toranj.shop", "secret-pass-1")

	_, pair, err := f.svc.Login("rotate@toranj.shop", "secret-pass-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// 访问令牌不能当作刷新令牌使用
	if _, _, err := f.svc.Refresh(pair.AccessToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("want ErrRefreshTokenInvalid for access token got %v", err)
	}

	_, rotated, err := f.svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}

	// 旧刷新令牌已作废
	if _, _, err := f.svc.Refresh(pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("want ErrRefreshTokenInvalid for rotated-out token got %v", err)
	}

	// 新令牌可继续轮换
	if _, _, err := f.svc.Refresh(rotated.RefreshToken); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	f := setupUserAuthTest(t)
	f.register(t, "logout@toranj.shop", "secret-pass-1")

	_, pair, err := f.svc.Login("logout@toranj.shop", "secret-pass-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.svc.Logout(pair.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, _, err := f.svc.Refresh(pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("refresh after logout must fail, got %v", err)
	}
	if err := f.svc.Logout(pair.RefreshToken); err != nil {
		t.Fatalf("repeated logout should be a no-op, got %v", err)
	}
	if err := f.svc.Logout("garbage-token"); err != nil {
		t.Fatalf("logout with malformed token should be a no-op, got %v", err)
	}
}

func TestForgotPasswordUniformResponse(t *testing.T) {
	f := setupUserAuthTest(t)
	user := f.register(t, "reset@toranj.shop", "secret-pass-1")

	// 邮箱不存在、格式非法、存在：对调用方一律成功
	if err := f.svc.ForgotPassword("ghost@toranj.shop"); err != nil {
		t.Fatalf("forgot password for unknown email must not error, got %v", err)
	}
	if err := f.svc.ForgotPassword("not-an-email"); err != nil {
		t.Fatalf("forgot password for invalid email must not error, got %v", err)
	}
	if err := f.svc.ForgotPassword("reset@toranj.shop"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}

	// 真实用户会产生重置令牌
	var record models.PasswordResetToken
	if err := models.DB.Where("user_id = ?", user.ID).First(&record).Error; err != nil {
		t.Fatalf("reset token should be stored: %v", err)
	}
}

func TestResetPasswordConsumesTokenAndRevokesSessions(t *testing.T) {
	f := setupUserAuthTest(t)
	user := f.register(t, "consume@toranj.shop", "secret-pass-1")

	_, pair, err := f.svc.Login("consume@toranj.shop", "secret-pass-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.svc.ForgotPassword("consume@toranj.shop"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	var record models.PasswordResetToken
	if err := models.DB.Where("user_id = ?", user.ID).First(&record).Error; err != nil {
		t.Fatalf("load reset token failed: %v", err)
	}

	if err := f.svc.ResetPassword(record.Token, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
	if err := f.svc.ResetPassword(record.Token, "next-pass-22"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	// 新密码生效，旧密码失效
	if _, _, err := f.svc.Login("consume@toranj.shop", "secret-pass-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must be rejected, got %v", err)
	}
	if _, _, err := f.svc.Login("consume@toranj.shop", "next-pass-22"); err != nil {
		t.Fatalf("new password login failed: %v", err)
	}

	// 刷新令牌全部吊销，令牌单次使用
	if _, _, err := f.svc.Refresh(pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("refresh tokens must be revoked after reset, got %v", err)
	}
	if err := f.svc.ResetPassword(record.Token, "another-pass-33"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("want ErrResetTokenInvalid on token reuse got %v", err)
	}

	// 过期令牌
	expired := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     "expired-reset-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := models.DB.Create(expired).Error; err != nil {
		t.Fatalf("seed expired reset token failed: %v", err)
	}
	if err := f.svc.ResetPassword(expired.Token, "another-pass-33"); !errors.Is(err, ErrResetTokenExpired) {
		t.Fatalf("want ErrResetTokenExpired got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := setupUserAuthTest(t)
	user := f.register(t, "change@toranj.shop", "secret-pass-1")

	_, pair, err := f.svc.Login("change@toranj.shop", "secret-pass-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.svc.ChangePassword(user.ID, "wrong-old", "next-pass-22"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword got %v", err)
	}
	if err := f.svc.ChangePassword(user.ID, "secret-pass-1", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword got %v", err)
	}
	if err := f.svc.ChangePassword(user.ID, "secret-pass-1", "next-pass-22"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := f.svc.Login("change@toranj.shop", "next-pass-22"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, err := f.svc.Refresh(pair.RefreshToken); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Fatalf("refresh tokens must be revoked after password change, got %v", err)
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	policy := config.PasswordPolicyConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireNumber: true,
	}

	cases := []struct {
		password string
		wantKey  string
	}{
		{"Ab1defgh", ""},
		{"Ab1", "error.password_min_length"},
		{"abcdefg1", "error.password_require_upper"},
		{"Abcdefgh", "error.password_require_number"},
	}
	for _, tc := range cases {
		err := validatePassword(policy, tc.password)
		if tc.wantKey == "" {
			if err != nil {
				t.Errorf("password %q should pass, got %v", tc.password, err)
			}
			continue
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("password %q: want ErrWeakPassword got %v", tc.password, err)
			continue
		}
		var keyed interface{ Key() string }
		if !errors.As(err, &keyed) || keyed.Key() != tc.wantKey {
			t.Errorf("password %q: want key %s got %v", tc.password, tc.wantKey, err)
		}
	}
}
