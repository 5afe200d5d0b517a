package shared

import (
	"github.com/toranj-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUintWithKeys 从 gin 上下文读取 uint 值。
// 键不存在视为未登录，负数或类型不符按传入的消息 key 报错。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	id, code, errKey := coerceUint(value, invalidKey, typeInvalidKey)
	if errKey != "" {
		RespondError(c, code, errKey, nil)
		return 0, false
	}
	return id, true
}

func coerceUint(value interface{}, invalidKey, typeInvalidKey string) (uint, int, string) {
	switch v := value.(type) {
	case uint:
		return v, 0, ""
	case int:
		if v < 0 {
			return 0, response.CodeBadRequest, invalidKey
		}
		return uint(v), 0, ""
	case float64:
		if v < 0 {
			return 0, response.CodeBadRequest, invalidKey
		}
		return uint(v), 0, ""
	default:
		return 0, response.CodeInternal, typeInvalidKey
	}
}
