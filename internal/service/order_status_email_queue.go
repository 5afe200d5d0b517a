package service

import (
	"strings"

	"github.com/toranj-shop/internal/queue"
)

// enqueueOrderStatusEmailTask 入队订单状态邮件任务
// 队列未启用时直接跳过
func enqueueOrderStatusEmailTask(queueClient *queue.Client, orderID uint, status string) error {
	if queueClient == nil || orderID == 0 {
		return nil
	}
	return queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  strings.TrimSpace(status),
	})
}
