package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/toranj-shop/internal/cache"
	"github.com/toranj-shop/internal/constants"
	"github.com/toranj-shop/internal/logger"
	"github.com/toranj-shop/internal/models"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// state 随机数缓存，授权跳转时写入、回调时一次性核销
const (
	googleStateKeyPrefix = "oauth:google:state:"
	googleStateTTL       = 10 * time.Minute
)

// googleUserInfo Google userinfo 响应
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func (s *UserAuthService) googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.Google.ClientID,
		ClientSecret: s.cfg.Google.ClientSecret,
		RedirectURL:  s.cfg.Google.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// GoogleAuthStart 生成 Google 授权跳转地址
// state 为随机生成的一次性随机数，缓存可用时写入缓存供回调核销
func (s *UserAuthService) GoogleAuthStart(ctx context.Context) (string, error) {
	if !s.cfg.Google.Enabled {
		return "", ErrGoogleAuthFailed
	}
	state := uuid.NewString()
	if cache.Enabled() {
		if err := cache.SetJSON(ctx, googleStateKeyPrefix+state, true, googleStateTTL); err != nil {
			return "", err
		}
	}
	return s.googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// ConsumeGoogleState 核销授权回调携带的 state
// 核销后立即失效；缓存未启用时放行
func (s *UserAuthService) ConsumeGoogleState(ctx context.Context, state string) error {
	if !cache.Enabled() {
		return nil
	}
	state = strings.TrimSpace(state)
	if state == "" {
		return ErrGoogleAuthFailed
	}
	var stored bool
	found, err := cache.GetJSON(ctx, googleStateKeyPrefix+state, &stored)
	if err != nil {
		return err
	}
	if !found || !stored {
		return ErrGoogleAuthFailed
	}
	return cache.Del(ctx, googleStateKeyPrefix+state)
}

// GoogleLogin 用授权码换取用户信息并登录
// 匹配顺序：google_id -> 邮箱关联 -> 新建账号
func (s *UserAuthService) GoogleLogin(ctx context.Context, code string) (*models.User, *TokenPair, bool, error) {
	if !s.cfg.Google.Enabled {
		return nil, nil, false, ErrGoogleAuthFailed
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, false, ErrGoogleAuthFailed
	}

	conf := s.googleOAuthConfig()
	exchangeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	token, err := conf.Exchange(exchangeCtx, code)
	if err != nil {
		logger.Warnw("google_code_exchange_failed", "error", err)
		return nil, nil, false, ErrGoogleAuthFailed
	}

	info, err := fetchGoogleUserInfo(exchangeCtx, conf, token)
	if err != nil {
		logger.Warnw("google_userinfo_failed", "error", err)
		return nil, nil, false, ErrGoogleAuthFailed
	}
	if info.ID == "" || info.Email == "" {
		return nil, nil, false, ErrGoogleAuthFailed
	}

	email, err := normalizeEmail(info.Email)
	if err != nil {
		return nil, nil, false, ErrGoogleAuthFailed
	}

	user, isNewUser, err := s.findOrLinkGoogleUser(info, email)
	if err != nil {
		return nil, nil, false, err
	}
	if !user.IsActive {
		return nil, nil, false, ErrAccountDisabled
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(user); err != nil {
		logger.Warnw("user_login_stamp_failed", "user_id", user.ID, "error", err)
	}

	pair, err := s.IssueTokenPair(user)
	if err != nil {
		return nil, nil, false, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, pair, isNewUser, nil
}

func (s *UserAuthService) findOrLinkGoogleUser(info *googleUserInfo, email string) (*models.User, bool, error) {
	user, err := s.users.GetByGoogleID(info.ID)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		return user, false, nil
	}

	var isNewUser bool
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		existing, err := repo.GetByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.GoogleID = info.ID
			existing.EmailVerified = true
			if err := repo.Update(existing); err != nil {
				return err
			}
			user = existing
			return nil
		}

		created := &models.User{
			Email:         email,
			GoogleID:      info.ID,
			FirstName:     strings.TrimSpace(info.GivenName),
			LastName:      strings.TrimSpace(info.FamilyName),
			Role:          constants.UserRoleUser,
			Locale:        constants.LocaleFaIR,
			IsActive:      true,
			EmailVerified: true,
		}
		if err := repo.Create(created); err != nil {
			return err
		}
		user = created
		isNewUser = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, isNewUser, nil
}

func fetchGoogleUserInfo(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*googleUserInfo, error) {
	client := conf.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logger.Warnw("google_userinfo_status", "status", resp.StatusCode, "body", string(body))
		return nil, ErrGoogleAuthFailed
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
