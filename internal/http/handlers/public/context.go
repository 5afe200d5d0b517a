package public

import (
	handlershared "github.com/toranj-shop/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// getUserID 读取鉴权中间件写入的用户 ID
func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}
