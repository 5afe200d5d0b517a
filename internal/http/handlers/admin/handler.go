package admin

import "github.com/toranj-shop/internal/provider"

// Handler 管理端 API 处理器，直接嵌入依赖容器
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
