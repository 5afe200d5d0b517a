package admin

import (
	"github.com/toranj-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAdminCaptcha 生成登录图片验证码
// 未启用验证码时返回 enabled=false，前端据此跳过验证码输入
func (h *Handler) GetAdminCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
