package router

import (
	"context"
	"net/http"
	"time"

	"github.com/toranj-shop/internal/cache"
	"github.com/toranj-shop/internal/models"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// HealthHandler 健康检查
// 逐项探测数据库与 Redis；依赖故障时整体降级为 degraded，HTTP 状态码保持 200
// 以免负载均衡把实例整个摘掉
func HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"

	dbStatus := "ok"
	switch {
	case models.DB == nil:
		dbStatus = "down"
	default:
		sqlDB, err := models.DB.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "down"
		}
	}
	if dbStatus != "ok" {
		status = "degraded"
	}

	redisStatus := "disabled"
	if client := cache.Client(); client != nil {
		redisStatus = "ok"
		if err := client.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"uptime": time.Since(startedAt).Truncate(time.Second).String(),
		"checks": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
