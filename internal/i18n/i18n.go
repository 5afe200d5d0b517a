package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 站点语言常量
const (
	LocaleFA = "fa-IR"
	LocaleEN = "en-US"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleFA

// SupportedLocales 支持的语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleFA, LocaleEN}

// Normalize 归一化语言标识，未知值回退默认语言。
func Normalize(locale string) string {
	v := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case v == "":
		return DefaultLocale
	case strings.HasPrefix(v, "fa"):
		return LocaleFA
	case strings.HasPrefix(v, "en"):
		return LocaleEN
	default:
		return DefaultLocale
	}
}

// ResolveLocale 从请求解析语言：lang 查询参数优先，其次 Accept-Language。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return Normalize(lang)
	}
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return DefaultLocale
	}
	// 只取首个语言标签，忽略权重
	first := header
	if idx := strings.IndexAny(header, ",;"); idx >= 0 {
		first = header[:idx]
	}
	return Normalize(first)
}

// T 返回指定语言的文案；缺失时按回退顺序查找，最终返回 key 本身。
func T(locale, key string) string {
	normalized := Normalize(locale)
	if m, ok := catalog[normalized]; ok {
		if msg, ok := m[key]; ok {
			return msg
		}
	}
	for _, fallback := range SupportedLocales {
		if fallback == normalized {
			continue
		}
		if msg, ok := catalog[fallback][key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 返回带格式化参数的文案。
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
