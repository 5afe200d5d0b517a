package public

import "github.com/toranj-shop/internal/provider"

// Handler 面向店铺前台的 API 处理器，覆盖游客与登录用户接口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
