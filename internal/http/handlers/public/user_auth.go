package public

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/toranj-shop/internal/http/response"
	"github.com/toranj-shop/internal/i18n"
	"github.com/toranj-shop/internal/models"
	"github.com/toranj-shop/internal/service"

	"github.com/gin-gonic/gin"
)

func userResponse(user *models.User) gin.H {
	if user == nil {
		return gin.H{}
	}
	return gin.H{
		"id":             user.ID,
		"email":          user.Email,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"phone":          user.Phone,
		"locale":         user.Locale,
		"email_verified": user.EmailVerified,
		"last_login_at":  user.LastLoginAt,
		"created_at":     user.CreatedAt,
	}
}

func respondWeakPassword(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	if perr, ok := err.(interface {
		Key() string
		Args() []interface{}
	}); ok {
		msg := i18n.Sprintf(locale, perr.Key(), perr.Args()...)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondError(c, response.CodeBadRequest, "error.weak_password", nil)
}

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserRegister 邮箱密码注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, pair, err := h.UserAuthService.Register(service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Locale:    i18n.ResolveLocale(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInvalid):
			respondError(c, response.CodeBadRequest, "error.invalid_email", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "error.email_exists", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondWeakPassword(c, err)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":   userResponse(user),
		"tokens": pair,
	})
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserLogin 邮箱密码登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, pair, err := h.UserAuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrAccountDisabled):
			respondError(c, response.CodeUnauthorized, "error.account_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":   userResponse(user),
		"tokens": pair,
	})
}

// SendOtpRequest 发送一次性验证码请求
type SendOtpRequest struct {
	Email string `json:"email" binding:"required"`
}

// SendOtp 发送登录验证码邮件
func (h *Handler) SendOtp(c *gin.Context) {
	var req SendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	if err := h.UserAuthService.SendOtpCode(req.Email, locale); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInvalid):
			respondError(c, response.CodeBadRequest, "error.invalid_email", nil)
			return
		case errors.Is(err, service.ErrOtpTooFrequent):
			respondError(c, response.CodeTooManyRequests, "error.otp_too_frequent", nil)
			return
		default:
			// 账号状态与发送结果不回传，响应形态与成功一致，避免账号枚举
			requestLog(c).Warnw("otp_send_failed", "error", err)
		}
	}

	response.SuccessWithMsg(c, i18n.T(locale, "msg.otp_sent"), gin.H{"sent": true})
}

// VerifyOtpRequest 验证码登录请求
type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOtp 校验验证码并签发令牌
func (h *Handler) VerifyOtp(c *gin.Context) {
	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, pair, isNewUser, err := h.UserAuthService.VerifyOtpCode(req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInvalid):
			respondError(c, response.CodeBadRequest, "error.invalid_email", nil)
		case errors.Is(err, service.ErrOtpInvalid):
			respondError(c, response.CodeBadRequest, "error.otp_invalid", nil)
		case errors.Is(err, service.ErrOtpExpired):
			respondError(c, response.CodeBadRequest, "error.otp_expired", nil)
		case errors.Is(err, service.ErrAccountDisabled):
			respondError(c, response.CodeUnauthorized, "error.account_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":        userResponse(user),
		"tokens":      pair,
		"is_new_user": isNewUser,
	})
}

// GoogleAuthRedirect 把浏览器重定向到 Google 授权页
func (h *Handler) GoogleAuthRedirect(c *gin.Context) {
	authURL, err := h.UserAuthService.GoogleAuthStart(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.google_oauth", err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback Google 授权回调
// 核销 state、换取令牌后把浏览器带回前端，令牌走查询参数；任何失败渲染错误页
func (h *Handler) GoogleCallback(c *gin.Context) {
	if denied := c.Query("error"); denied != "" {
		requestLog(c).Warnw("google_callback_denied", "error", denied)
		h.renderGoogleAuthError(c)
		return
	}

	ctx := c.Request.Context()
	if err := h.UserAuthService.ConsumeGoogleState(ctx, c.Query("state")); err != nil {
		requestLog(c).Warnw("google_state_rejected", "error", err)
		h.renderGoogleAuthError(c)
		return
	}

	_, pair, isNewUser, err := h.UserAuthService.GoogleLogin(ctx, c.Query("code"))
	if err != nil {
		requestLog(c).Warnw("google_login_failed", "error", err)
		h.renderGoogleAuthError(c)
		return
	}

	target, err := url.Parse(strings.TrimRight(h.Config.App.FrontendURL, "/") + "/auth/google/callback")
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	query := target.Query()
	query.Set("access_token", pair.AccessToken)
	query.Set("refresh_token", pair.RefreshToken)
	if isNewUser {
		query.Set("is_new_user", "1")
	}
	target.RawQuery = query.Encode()
	c.Redirect(http.StatusFound, target.String())
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken 轮换刷新令牌并签发新令牌对
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, pair, err := h.UserAuthService.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			respondError(c, response.CodeUnauthorized, "error.refresh_token_invalid", nil)
		case errors.Is(err, service.ErrAccountDisabled):
			respondError(c, response.CodeUnauthorized, "error.account_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":   userResponse(user),
		"tokens": pair,
	})
}

// UserLogout 注销刷新令牌
// 令牌不存在时同样返回成功
func (h *Handler) UserLogout(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.UserAuthService.Logout(req.RefreshToken); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "msg.logout"), nil)
}

// ForgotPasswordRequest 忘记密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword 发送密码重置邮件
// 无论邮箱是否存在都返回同一响应，避免账号枚举
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.UserAuthService.ForgotPassword(req.Email); err != nil {
		requestLog(c).Warnw("forgot_password_failed", "error", err)
	}

	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "msg.forgot_password"), nil)
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetPassword 使用重置令牌设置新密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.UserAuthService.ResetPassword(req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			respondError(c, response.CodeBadRequest, "error.reset_token_invalid", nil)
		case errors.Is(err, service.ErrResetTokenExpired):
			respondError(c, response.CodeBadRequest, "error.reset_token_expired", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondWeakPassword(c, err)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "msg.password_reset"), nil)
}

// ChangePasswordRequest 登录态改密请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 登录态修改密码，成功后吊销全部刷新令牌
func (h *Handler) ChangePassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.UserAuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "error.old_password_wrong", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondWeakPassword(c, err)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	locale := i18n.ResolveLocale(c)
	response.SuccessWithMsg(c, i18n.T(locale, "msg.password_changed"), nil)
}

// GetCurrentUser 获取当前用户资料
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUser(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, userResponse(user))
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Locale    *string `json:"locale"`
}

// UpdateProfile 更新当前用户资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.UserAuthService.UpdateProfile(id, service.ProfileUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Locale:    req.Locale,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, userResponse(user))
}
