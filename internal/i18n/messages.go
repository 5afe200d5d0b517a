package i18n

// catalog 全量文案表（fa 为主语言，en 为回退）
var catalog = map[string]map[string]string{
	LocaleFA: {
		// 通用错误
		"error.bad_request":            "درخواست نامعتبر است",
		"error.unauthorized":           "ابتدا وارد حساب کاربری شوید",
		"error.forbidden":              "دسترسی غیرمجاز",
		"error.not_found":              "موردی یافت نشد",
		"error.internal":               "خطای داخلی سرور. لطفاً بعداً تلاش کنید",
		"error.rate_limited":           "درخواست‌های شما بیش از حد مجاز است. لطفاً %d ثانیه دیگر تلاش کنید",
		"error.rate_limit_unavailable": "سرویس موقتاً در دسترس نیست. لطفاً بعداً تلاش کنید",
		"error.auth_header_missing":    "هدر احراز هویت ارسال نشده است",
		"error.auth_header_invalid":    "هدر احراز هویت نامعتبر است",
		"error.token_invalid":          "توکن نامعتبر یا منقضی شده است",
		"error.token_revoked":          "توکن باطل شده است. دوباره وارد شوید",
		"error.user_disabled":          "حساب کاربری شما غیرفعال شده است",
		"error.jwt_secret_missing":     "خطای پیکربندی سرور. لطفاً با پشتیبانی تماس بگیرید.",

		// 认证
		"error.email_exists":          "کاربر با این ایمیل قبلاً ثبت‌نام کرده است",
		"error.invalid_credentials":   "ایمیل یا رمز عبور اشتباه است",
		"error.invalid_email":         "لطفاً یک ایمیل معتبر وارد کنید",
		"error.account_disabled":      "حساب کاربری شما غیرفعال شده است",
		"error.otp_invalid":           "کد تأیید نامعتبر است",
		"error.otp_expired":           "کد تأیید منقضی شده است",
		"error.otp_too_frequent":      "کد تأیید به‌تازگی ارسال شده است. لطفاً کمی صبر کنید",
		"error.refresh_token_invalid": "توکن نامعتبر یا منقضی شده است",
		"error.reset_token_invalid":   "توکن نامعتبر است",
		"error.reset_token_expired":   "توکن منقضی شده است",
		"error.old_password_wrong":    "رمز عبور فعلی اشتباه است",
		"error.user_not_found":        "کاربر یافت نشد",
		"error.email_send_failed":     "خطا در ارسال ایمیل. لطفاً دوباره تلاش کنید",
		"error.google_oauth":          "خطا در ورود با گوگل",
		"error.captcha_required":      "کد امنیتی الزامی است",
		"error.captcha_invalid":       "کد امنیتی اشتباه است",
		"error.file_missing":          "فایلی ارسال نشده است",
		"error.upload_failed":         "خطا در بارگذاری فایل",

		// 管理员账号管理
		"error.admin_username_invalid":      "نام کاربری نامعتبر است",
		"error.admin_username_exists":       "این نام کاربری قبلاً ثبت شده است",
		"error.admin_delete_self_forbidden": "امکان حذف حساب خودتان وجود ندارد",
		"error.admin_delete_protected":      "این مدیر قابل حذف نیست",
		"error.admin_delete_last_forbidden": "آخرین مدیر قابل حذف نیست",

		// 密码策略
		"error.weak_password":            "رمز عبور به اندازه کافی قوی نیست",
		"error.password_min_length":      "رمز عبور باید حداقل %d کاراکتر باشد",
		"error.password_require_upper":   "رمز عبور باید حداقل یک حرف بزرگ داشته باشد",
		"error.password_require_lower":   "رمز عبور باید حداقل یک حرف کوچک داشته باشد",
		"error.password_require_number":  "رمز عبور باید حداقل یک رقم داشته باشد",
		"error.password_require_special": "رمز عبور باید حداقل یک کاراکتر ویژه داشته باشد",

		// 商品与分类
		"error.product_not_found":         "محصول یافت نشد",
		"error.product_inactive":          "محصول یافت نشد یا غیرفعال است",
		"error.product_slug_exists":       "محصول با این slug قبلاً ایجاد شده است",
		"error.product_invalid":           "اطلاعات محصول نامعتبر است",
		"error.insufficient_stock":        "موجودی کافی نیست",
		"error.insufficient_stock_named":  "موجودی محصول %s کافی نیست",
		"error.category_not_found":        "دسته‌بندی یافت نشد",
		"error.category_invalid":          "اطلاعات دسته‌بندی نامعتبر است",
		"error.category_parent_not_found": "دسته‌بندی والد یافت نشد",
		"error.category_slug_exists":      "دسته‌بندی با این slug قبلاً ایجاد شده است",
		"error.category_has_children":     "این دسته‌بندی دارای زیردسته است و نمی‌توان آن را حذف کرد",
		"error.category_has_products":     "این دسته‌بندی دارای محصول است و نمی‌توان آن را حذف کرد",

		// 购物车与地址
		"error.cart_empty":          "سبد خرید خالی است",
		"error.cart_item_not_found": "آیتم سبد خرید یافت نشد",
		"error.address_not_found":   "آدرس یافت نشد",
		"error.address_invalid":     "آدرس نامعتبر است",

		// 订单与支付
		"error.order_not_found":        "سفارش یافت نشد",
		"error.order_cancel_shipped":   "سفارش ارسال شده یا تحویل داده شده را نمی‌توان لغو کرد",
		"error.order_cancel_paid":      "سفارش پرداخت شده را نمی‌توان لغو کرد. لطفاً درخواست مرجوعی ثبت کنید",
		"error.order_status_invalid":   "تغییر وضعیت سفارش نامعتبر است",
		"error.payment_gateway":        "خطا در اتصال به درگاه پرداخت",
		"error.payment_verify":         "خطا در تایید پرداخت",
		"error.payment_canceled":       "پرداخت توسط کاربر لغو شد",
		"error.payment_method_invalid": "روش پرداخت نامعتبر",

		// 评价与心愿单
		"error.review_exists":      "شما قبلاً برای این محصول نظر ثبت کرده‌اید",
		"error.review_invalid":     "امتیاز باید بین ۱ تا ۵ باشد",
		"error.review_not_found":   "نظر یافت نشد",
		"error.wishlist_exists":    "این محصول قبلاً به علاقه‌مندی‌ها اضافه شده است",
		"error.wishlist_not_found": "آیتم در علاقه‌مندی‌ها یافت نشد",

		// 成功提示
		"msg.forgot_password":  "اگر ایمیل در سیستم موجود باشد، لینک بازیابی ارسال شد",
		"msg.password_reset":   "رمز عبور با موفقیت تغییر کرد",
		"msg.password_changed": "رمز عبور با موفقیت تغییر کرد",
		"msg.otp_sent":         "کد تأیید ارسال شد",
		"msg.logout":           "خروج با موفقیت انجام شد",
		"msg.order_created":    "سفارش با موفقیت ثبت شد",
		"msg.order_canceled":   "سفارش با موفقیت لغو شد",
		"msg.payment_success":  "پرداخت با موفقیت انجام شد",
		"msg.payment_offline":  "پرداخت در محل یا واریز بانکی - نیازی به درگاه نیست",
		"msg.cart_cleared":     "سبد خرید خالی شد",
		"msg.address_deleted":  "آدرس با موفقیت حذف شد",
		"msg.review_deleted":   "نظر با موفقیت حذف شد",
		"msg.wishlist_removed": "محصول از علاقه‌مندی‌ها حذف شد",
		"msg.product_deleted":  "محصول با موفقیت حذف شد",
		"msg.category_deleted": "دسته‌بندی با موفقیت حذف شد",
		"msg.email_verified":   "ایمیل شما با موفقیت تأیید شد",

		// 订单状态标签
		"order.status.PENDING":    "در انتظار پرداخت",
		"order.status.CONFIRMED":  "تأیید شده",
		"order.status.PROCESSING": "در حال آماده‌سازی",
		"order.status.SHIPPED":    "ارسال شده",
		"order.status.DELIVERED":  "تحویل داده شده",
		"order.status.CANCELLED":  "لغو شده",
		"order.status.REFUNDED":   "مرجوع شده",

		// 邮件文案
		"email.otp.subject":          "کد تأیید ورود - %s",
		"email.otp.body":             "کد تأیید شما: %s\nاین کد تا %d دقیقه معتبر است.\nاگر شما این درخواست را ثبت نکرده‌اید، این ایمیل را نادیده بگیرید.",
		"email.reset.subject":        "بازیابی رمز عبور - %s",
		"email.reset.body":           "برای بازیابی رمز عبور روی پیوند زیر کلیک کنید:\n%s\nاین پیوند تا ۱ ساعت معتبر است.",
		"email.order_status.subject": "به‌روزرسانی سفارش %s",
		"email.order_status.body":    "وضعیت سفارش %s به «%s» تغییر کرد.\nمبلغ سفارش: %s ریال",
	},
	LocaleEN: {
		"error.bad_request":            "Invalid request",
		"error.unauthorized":           "Please sign in first",
		"error.forbidden":              "Access denied",
		"error.not_found":              "Not found",
		"error.internal":               "Internal server error, please try again later",
		"error.rate_limited":           "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable": "Service temporarily unavailable, please try again later",
		"error.auth_header_missing":    "Authorization header missing",
		"error.auth_header_invalid":    "Authorization header invalid",
		"error.token_invalid":          "Token invalid or expired",
		"error.token_revoked":          "Token revoked, please sign in again",
		"error.user_disabled":          "Your account has been disabled",
		"error.jwt_secret_missing":     "Server configuration error, please contact support",

		"error.email_exists":          "An account with this email already exists",
		"error.invalid_credentials":   "Incorrect email or password",
		"error.invalid_email":         "Please enter a valid email address",
		"error.account_disabled":      "Your account has been disabled",
		"error.otp_invalid":           "Verification code is invalid",
		"error.otp_expired":           "Verification code has expired",
		"error.otp_too_frequent":      "A code was sent recently, please wait a moment",
		"error.refresh_token_invalid": "Token invalid or expired",
		"error.reset_token_invalid":   "Token is invalid",
		"error.reset_token_expired":   "Token has expired",
		"error.old_password_wrong":    "Current password is incorrect",
		"error.user_not_found":        "User not found",
		"error.email_send_failed":     "Failed to send email, please try again",
		"error.google_oauth":          "Google sign-in failed",
		"error.captcha_required":      "Captcha is required",
		"error.captcha_invalid":       "Captcha is incorrect",
		"error.file_missing":          "No file was uploaded",
		"error.upload_failed":         "Failed to store uploaded file",

		"error.admin_username_invalid":      "Username is invalid",
		"error.admin_username_exists":       "Username is already taken",
		"error.admin_delete_self_forbidden": "You cannot delete your own account",
		"error.admin_delete_protected":      "This administrator cannot be deleted",
		"error.admin_delete_last_forbidden": "The last administrator cannot be deleted",

		"error.weak_password":            "Password is not strong enough",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",

		"error.product_not_found":         "Product not found",
		"error.product_inactive":          "Product not found or inactive",
		"error.product_slug_exists":       "A product with this slug already exists",
		"error.product_invalid":           "Product data is invalid",
		"error.insufficient_stock":        "Insufficient stock",
		"error.insufficient_stock_named":  "Insufficient stock for product %s",
		"error.category_not_found":        "Category not found",
		"error.category_invalid":          "Category data is invalid",
		"error.category_parent_not_found": "Parent category not found",
		"error.category_slug_exists":      "A category with this slug already exists",
		"error.category_has_children":     "Category has subcategories and cannot be deleted",
		"error.category_has_products":     "Category has products and cannot be deleted",

		"error.cart_empty":          "Cart is empty",
		"error.cart_item_not_found": "Cart item not found",
		"error.address_not_found":   "Address not found",
		"error.address_invalid":     "Address is invalid",

		"error.order_not_found":        "Order not found",
		"error.order_cancel_shipped":   "A shipped or delivered order cannot be cancelled",
		"error.order_cancel_paid":      "A paid order cannot be cancelled, please request a refund",
		"error.order_status_invalid":   "Invalid order status transition",
		"error.payment_gateway":        "Failed to reach the payment gateway",
		"error.payment_verify":         "Payment verification failed",
		"error.payment_canceled":       "Payment was cancelled by the user",
		"error.payment_method_invalid": "Invalid payment method",

		"error.review_exists":      "You have already reviewed this product",
		"error.review_invalid":     "Rating must be between 1 and 5",
		"error.review_not_found":   "Review not found",
		"error.wishlist_exists":    "This product is already in your wishlist",
		"error.wishlist_not_found": "Item not found in wishlist",

		"msg.forgot_password":  "If the email exists in our system, a recovery link has been sent",
		"msg.password_reset":   "Password changed successfully",
		"msg.password_changed": "Password changed successfully",
		"msg.otp_sent":         "Verification code sent",
		"msg.logout":           "Signed out successfully",
		"msg.order_created":    "Order placed successfully",
		"msg.order_canceled":   "Order cancelled successfully",
		"msg.payment_success":  "Payment completed successfully",
		"msg.payment_offline":  "Cash on delivery or bank transfer - no gateway needed",
		"msg.cart_cleared":     "Cart cleared",
		"msg.address_deleted":  "Address deleted successfully",
		"msg.review_deleted":   "Review deleted successfully",
		"msg.wishlist_removed": "Product removed from wishlist",
		"msg.product_deleted":  "Product deleted successfully",
		"msg.category_deleted": "Category deleted successfully",
		"msg.email_verified":   "Your email has been verified",

		"order.status.PENDING":    "Pending payment",
		"order.status.CONFIRMED":  "Confirmed",
		"order.status.PROCESSING": "Processing",
		"order.status.SHIPPED":    "Shipped",
		"order.status.DELIVERED":  "Delivered",
		"order.status.CANCELLED":  "Cancelled",
		"order.status.REFUNDED":   "Refunded",

		"email.otp.subject":          "Sign-in verification code - %s",
		"email.otp.body":             "Your verification code: %s\nThe code is valid for %d minutes.\nIf you did not request this, please ignore this email.",
		"email.reset.subject":        "Password recovery - %s",
		"email.reset.body":           "Click the link below to reset your password:\n%s\nThe link is valid for 1 hour.",
		"email.order_status.subject": "Order %s update",
		"email.order_status.body":    "Order %s status changed to \"%s\".\nOrder amount: %s IRR",
	},
}
