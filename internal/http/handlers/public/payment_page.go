package public

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// paymentResultPage 支付结果中转页
// 网关以浏览器重定向回跳，这里渲染结果并延时跳回前端订单页
var paymentResultPage = template.Must(template.New("payment_result").Parse(`<!DOCTYPE html>
<html lang="fa" dir="rtl">
<head>
<meta charset="utf-8">
<title>نتیجه پرداخت</title>
<style>
body { font-family: 'Vazir', 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; direction: rtl; text-align: center; padding: 50px; }
.success { color: green; }
.error { color: red; }
</style>
</head>
<body>
{{if .Success}}<h1 class="success">پرداخت موفق</h1>
<p>شماره سفارش: {{.OrderNo}}</p>
<p>کد پیگیری: {{.RefID}}</p>
{{else}}<h1 class="error">پرداخت ناموفق</h1>
{{if .OrderNo}}<p>شماره سفارش: {{.OrderNo}}</p>{{end}}
{{end}}<p>در حال انتقال به فروشگاه...</p>
<script>
setTimeout(function () { window.location.href = {{.RedirectURL}}; }, 3000);
</script>
</body>
</html>
`))

type paymentResultView struct {
	Success     bool
	OrderNo     string
	RefID       string
	RedirectURL string
}

func (h *Handler) renderPaymentResult(c *gin.Context, view paymentResultView) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := paymentResultPage.Execute(c.Writer, view); err != nil {
		requestLog(c).Errorw("payment_result_render_failed", "error", err)
	}
}

func (h *Handler) paymentRedirectURL(orderID uint) string {
	base := strings.TrimRight(h.Config.App.FrontendURL, "/")
	if orderID == 0 {
		return base + "/orders"
	}
	return fmt.Sprintf("%s/orders/%d", base, orderID)
}
