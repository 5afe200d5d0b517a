package service

import (
	"strings"
	"sync"
	"time"

	"github.com/mojocn/base64Captcha"

	"github.com/toranj-shop/internal/config"
)

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 图片验证码服务
// 用于管理后台登录防爆破，按配置开关启用
type CaptchaService struct {
	cfg config.CaptchaConfig

	mu    sync.Mutex
	store base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{cfg: cfg}
}

// Enabled 判断是否启用
func (s *CaptchaService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	driver := base64Captcha.NewDriverDigit(
		resolveCaptchaInt(s.cfg.Height, 80),
		resolveCaptchaInt(s.cfg.Width, 240),
		resolveCaptchaInt(s.cfg.Length, 5),
		0.7,
		resolveCaptchaInt(s.cfg.NoiseCount, 80),
	)
	captcha := base64Captcha.NewCaptcha(driver, s.imageStore())
	id, b64, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{CaptchaID: id, ImageBase64: b64}, nil
}

// Verify 校验验证码
// 未启用时直接放行；校验一次后即失效
func (s *CaptchaService) Verify(captchaID, captchaCode string) error {
	if !s.Enabled() {
		return nil
	}
	captchaID = strings.TrimSpace(captchaID)
	captchaCode = strings.TrimSpace(captchaCode)
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaRequired
	}
	if !s.imageStore().Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) imageStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		expiration := time.Duration(resolveCaptchaInt(s.cfg.ExpireSeconds, 300)) * time.Second
		s.store = base64Captcha.NewMemoryStore(resolveCaptchaInt(s.cfg.MaxStore, 10240), expiration)
	}
	return s.store
}

func resolveCaptchaInt(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
