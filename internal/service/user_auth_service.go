package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/toranj-shop/internal/cache"
	"github.com/toranj-shop/internal/config"
	"github.com/toranj-shop/internal/constants"
	"github.com/toranj-shop/internal/logger"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/repository"
)

const (
	userTokenTypeAccess  = "access"
	userTokenTypeRefresh = "refresh"
)

// UserJWTClaims 用户 JWT 载荷
type UserJWTClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair 访问令牌 + 刷新令牌
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // 访问令牌有效期（秒）
}

// UserAuthService 商城用户认证服务
type UserAuthService struct {
	cfg           *config.Config
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	resetTokens   repository.PasswordResetTokenRepository
	otpCodes      repository.OtpCodeRepository
	email         *EmailService
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(
	cfg *config.Config,
	users repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	resetTokens repository.PasswordResetTokenRepository,
	otpCodes repository.OtpCodeRepository,
	email *EmailService,
) *UserAuthService {
	return &UserAuthService{
		cfg:           cfg,
		users:         users,
		refreshTokens: refreshTokens,
		resetTokens:   resetTokens,
		otpCodes:      otpCodes,
		email:         email,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Locale    string
}

// Register 邮箱密码注册
func (s *UserAuthService) Register(input RegisterInput) (*models.User, *TokenPair, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, nil, ErrEmailInvalid
	}
	if err := validatePassword(s.cfg.Security.Password, input.Password); err != nil {
		return nil, nil, err
	}

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailExists
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         constants.UserRoleUser,
		Locale:       resolveUserLocale(input.Locale),
		IsActive:     true,
	}
	if err := s.users.Create(user); err != nil {
		return nil, nil, err
	}

	pair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, pair, nil
}

// Login 邮箱密码登录
func (s *UserAuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(user); err != nil {
		logger.Warnw("user_login_stamp_failed", "user_id", user.ID, "error", err)
	}

	pair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, pair, nil
}

// SendOtpCode 发送一次性登录验证码
// 用户不存在时先创建占位账号，验证码与发送间隔受配置约束
func (s *UserAuthService) SendOtpCode(email, locale string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return ErrEmailInvalid
	}

	interval := resolveOtpSendInterval(s.cfg)
	if latest, err := s.otpCodes.GetLatestByEmail(normalized); err == nil && latest != nil {
		if time.Since(latest.CreatedAt) < interval {
			return ErrOtpTooFrequent
		}
	}

	code, err := randomNumericCode(resolveOtpLength(s.cfg))
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(resolveOtpTTL(s.cfg))

	var created *models.OtpCode
	var placeholder *models.User
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		user, err := userRepo.GetByEmail(normalized)
		if err != nil {
			return err
		}
		if user == nil {
			user = &models.User{
				Email:    normalized,
				Role:     constants.UserRoleUser,
				Locale:   resolveUserLocale(locale),
				IsActive: true,
			}
			if err := userRepo.Create(user); err != nil {
				return err
			}
			placeholder = user
		}

		otpRepo := s.otpCodes.WithTx(tx)
		if err := otpRepo.DeleteByEmail(normalized); err != nil {
			return err
		}
		record := &models.OtpCode{Email: normalized, Code: code, ExpiresAt: expiresAt}
		if err := otpRepo.Create(record); err != nil {
			return err
		}
		created = record
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.email.SendOtpCode(normalized, code, resolveUserLocale(locale)); err != nil {
		logger.Warnw("otp_email_send_failed", "email", normalized, "error", err)
		if created != nil {
			if delErr := s.otpCodes.DeleteByID(created.ID); delErr != nil {
				logger.Warnw("otp_code_compensate_failed", "email", normalized, "error", delErr)
			}
		}
		// 占位账号不能留下：邮箱带唯一索引，残留记录会挡住后续注册
		if placeholder != nil {
			if delErr := s.users.HardDelete(placeholder.ID); delErr != nil {
				logger.Warnw("otp_placeholder_compensate_failed", "email", normalized, "error", delErr)
			}
		}
		return ErrEmailSendFailed
	}
	return nil
}

// VerifyOtpCode 校验验证码并登录
// 返回值 isNewUser 表示该邮箱首次完成验证
func (s *UserAuthService) VerifyOtpCode(email, code string) (*models.User, *TokenPair, bool, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, false, ErrEmailInvalid
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, false, ErrOtpInvalid
	}

	record, err := s.otpCodes.GetLatestByEmail(normalized)
	if err != nil {
		return nil, nil, false, err
	}
	if record == nil || record.Code != code {
		return nil, nil, false, ErrOtpInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		_ = s.otpCodes.DeleteByID(record.ID)
		return nil, nil, false, ErrOtpExpired
	}

	user, err := s.users.GetByEmail(normalized)
	if err != nil {
		return nil, nil, false, err
	}
	if user == nil {
		return nil, nil, false, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, nil, false, ErrAccountDisabled
	}

	isNewUser := !user.EmailVerified
	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		user.EmailVerified = true
		user.LastLoginAt = &now
		if err := userRepo.Update(user); err != nil {
			return err
		}
		return s.otpCodes.WithTx(tx).DeleteByEmail(normalized)
	})
	if err != nil {
		return nil, nil, false, err
	}

	pair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, false, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, pair, isNewUser, nil
}

// IssueTokenPair 签发访问令牌与刷新令牌，并落库刷新令牌
func (s *UserAuthService) IssueTokenPair(user *models.User) (*TokenPair, error) {
	accessTTL := resolveUserAccessTTL(s.cfg)
	refreshTTL := resolveUserRefreshTTL(s.cfg)

	accessToken, err := s.signUserJWT(user, userTokenTypeAccess, accessTTL, "")
	if err != nil {
		return nil, err
	}

	jti := uuid.NewString()
	refreshToken, err := s.signUserJWT(user, userTokenTypeRefresh, refreshTTL, jti)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     jti,
		ExpiresAt: time.Now().Add(refreshTTL),
	}
	if err := s.refreshTokens.Create(record); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}

// Refresh 刷新令牌轮换：旧令牌作废，签发新的访问 + 刷新令牌
func (s *UserAuthService) Refresh(refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := s.ParseUserJWT(refreshToken)
	if err != nil || claims.TokenType != userTokenTypeRefresh || claims.ID == "" {
		return nil, nil, ErrRefreshTokenInvalid
	}

	record, err := s.refreshTokens.GetByToken(claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, ErrRefreshTokenInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		_ = s.refreshTokens.DeleteByToken(claims.ID)
		return nil, nil, ErrRefreshTokenInvalid
	}

	user, err := s.users.GetByID(record.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrRefreshTokenInvalid
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	accessTTL := resolveUserAccessTTL(s.cfg)
	refreshTTL := resolveUserRefreshTTL(s.cfg)

	accessToken, err := s.signUserJWT(user, userTokenTypeAccess, accessTTL, "")
	if err != nil {
		return nil, nil, err
	}
	newJTI := uuid.NewString()
	newRefreshToken, err := s.signUserJWT(user, userTokenTypeRefresh, refreshTTL, newJTI)
	if err != nil {
		return nil, nil, err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.refreshTokens.WithTx(tx)
		if err := repo.DeleteByToken(claims.ID); err != nil {
			return err
		}
		return repo.Create(&models.RefreshToken{
			UserID:    user.ID,
			Token:     newJTI,
			ExpiresAt: time.Now().Add(refreshTTL),
		})
	})
	if err != nil {
		return nil, nil, err
	}

	return user, &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}

// Logout 注销当前刷新令牌，幂等
func (s *UserAuthService) Logout(refreshToken string) error {
	claims, err := s.ParseUserJWT(refreshToken)
	if err != nil || claims.ID == "" {
		return nil
	}
	return s.refreshTokens.DeleteByToken(claims.ID)
}

// ForgotPassword 发起密码重置
// 无论邮箱是否存在均不向调用方泄露差异
func (s *UserAuthService) ForgotPassword(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil
	}

	user, err := s.users.GetByEmail(normalized)
	if err != nil {
		logger.Errorw("forgot_password_lookup_failed", "error", err)
		return nil
	}
	if user == nil || user.PasswordHash == "" {
		return nil
	}

	token, err := randomToken(32)
	if err != nil {
		logger.Errorw("forgot_password_token_failed", "error", err)
		return nil
	}
	expiresAt := time.Now().Add(time.Duration(constants.PasswordResetTTLMinutes) * time.Minute)

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.resetTokens.WithTx(tx)
		if err := repo.DeleteByUser(user.ID); err != nil {
			return err
		}
		return repo.Create(&models.PasswordResetToken{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: expiresAt,
		})
	})
	if err != nil {
		logger.Errorw("forgot_password_store_failed", "user_id", user.ID, "error", err)
		return nil
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.App.FrontendURL, "/"), token)
	if err := s.email.SendPasswordReset(user.Email, resetURL, user.Locale); err != nil {
		logger.Warnw("reset_email_send_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword 校验重置令牌并更新密码
// 成功后吊销该用户所有刷新令牌
func (s *UserAuthService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrResetTokenInvalid
	}
	if err := validatePassword(s.cfg.Security.Password, newPassword); err != nil {
		return err
	}

	record, err := s.resetTokens.GetByToken(token)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrResetTokenInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		_ = s.resetTokens.DeleteByID(record.ID)
		return ErrResetTokenExpired
	}

	user, err := s.users.GetByID(record.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrResetTokenInvalid
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		user.PasswordHash = hash
		if err := s.users.WithTx(tx).Update(user); err != nil {
			return err
		}
		if err := s.resetTokens.WithTx(tx).DeleteByUser(user.ID); err != nil {
			return err
		}
		return s.refreshTokens.WithTx(tx).DeleteByUser(user.ID)
	})
	if err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), user.ID)
	return nil
}

// ChangePassword 已登录用户修改密码
// 成功后吊销该用户所有刷新令牌
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.PasswordHash == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.Password, newPassword); err != nil {
		return err
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		user.PasswordHash = hash
		if err := s.users.WithTx(tx).Update(user); err != nil {
			return err
		}
		return s.refreshTokens.WithTx(tx).DeleteByUser(user.ID)
	})
	if err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), user.ID)
	return nil
}

// ProfileUpdateInput 个人资料更新输入，nil 字段保持不变
type ProfileUpdateInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Locale    *string
}

// UpdateProfile 修改个人资料
func (s *UserAuthService) UpdateProfile(userID uint, input ProfileUpdateInput) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Locale != nil {
		user.Locale = resolveUserLocale(*input.Locale)
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, nil
}

// GetUser 按 ID 获取用户
func (s *UserAuthService) GetUser(userID uint) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ParseUserJWT 校验并解析用户 JWT
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	return ParseUserJWT(s.cfg, tokenString)
}

// ParseUserJWT 校验并解析用户 JWT（供中间件复用）
func ParseUserJWT(cfg *config.Config, tokenString string) (*UserJWTClaims, error) {
	secret := strings.TrimSpace(cfg.UserJWT.SecretKey)
	if secret == "" {
		return nil, errors.New("user jwt secret not configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, &UserJWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*UserJWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *UserAuthService) signUserJWT(user *models.User, tokenType string, ttl time.Duration, jti string) (string, error) {
	secret := strings.TrimSpace(s.cfg.UserJWT.SecretKey)
	if secret == "" {
		return "", errors.New("user jwt secret not configured")
	}
	now := time.Now()
	claims := UserJWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *UserAuthService) hashPassword(password string) (string, error) {
	cost := s.cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", errors.New("empty email")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", err
	}
	return addr.Address, nil
}

func resolveUserLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case strings.HasPrefix(l, "en"):
		return constants.LocaleEnUS
	default:
		return constants.LocaleFaIR
	}
}

func resolveUserAccessTTL(cfg *config.Config) time.Duration {
	hours := cfg.UserJWT.AccessExpireHours
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}

func resolveUserRefreshTTL(cfg *config.Config) time.Duration {
	hours := cfg.UserJWT.RefreshExpireHours
	if hours <= 0 {
		hours = 24 * 7
	}
	return time.Duration(hours) * time.Hour
}

func resolveOtpTTL(cfg *config.Config) time.Duration {
	minutes := cfg.Otp.ExpireMinutes
	if minutes <= 0 {
		minutes = constants.OtpCodeTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func resolveOtpLength(cfg *config.Config) int {
	length := cfg.Otp.Length
	if length < 4 || length > 10 {
		return constants.OtpCodeLength
	}
	return length
}

func resolveOtpSendInterval(cfg *config.Config) time.Duration {
	seconds := cfg.Otp.SendIntervalSeconds
	if seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}

func randomNumericCode(length int) (string, error) {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteString(n.String())
	}
	return sb.String(), nil
}

func randomToken(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
