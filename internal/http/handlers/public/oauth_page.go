package public

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// googleAuthErrorPage 登录失败时给浏览器看的错误页，延时后跳回前端登录页
var googleAuthErrorPage = template.Must(template.New("google_auth_error").Parse(`<!DOCTYPE html>
<html lang="fa" dir="rtl">
<head>
<meta charset="utf-8">
<title>خطا در ورود</title>
<style>
body { font-family: 'Vazir', 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; direction: rtl; text-align: center; padding: 50px; }
.error { color: red; }
</style>
</head>
<body>
<h1 class="error">ورود با گوگل ناموفق بود</h1>
<p>در حال بازگشت به صفحه ورود...</p>
<script>
setTimeout(function () { window.location.href = {{.RedirectURL}}; }, 3000);
</script>
</body>
</html>
`))

func (h *Handler) renderGoogleAuthError(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	view := struct{ RedirectURL string }{
		RedirectURL: strings.TrimRight(h.Config.App.FrontendURL, "/") + "/login",
	}
	if err := googleAuthErrorPage.Execute(c.Writer, view); err != nil {
		requestLog(c).Errorw("google_auth_error_render_failed", "error", err)
	}
}
