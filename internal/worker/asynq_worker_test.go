package worker

import (
	"context"
	"testing"

	"github.com/toranj-shop/internal/provider"
	"github.com/toranj-shop/internal/queue"

	"github.com/hibiken/asynq"
)

func TestRegisterNilSafe(t *testing.T) {
	var c *Consumer
	c.Register(asynq.NewServeMux())

	NewConsumer(&provider.Container{}).Register(nil)
}

func TestHandleOrderStatusEmailInvalidPayload(t *testing.T) {
	c := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskOrderStatusEmail, []byte("not-json"))
	if err := c.handleOrderStatusEmail(context.Background(), task); err == nil {
		t.Fatal("expected unmarshal error for malformed payload")
	}
}

func TestHandleOrderStatusEmailZeroOrderID(t *testing.T) {
	c := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskOrderStatusEmail, []byte(`{"order_id":0}`))
	if err := c.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("expected zero order id to be skipped, got %v", err)
	}
}

func TestHandleOrderTimeoutCancelInvalidPayload(t *testing.T) {
	c := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte("not-json"))
	if err := c.handleOrderTimeoutCancel(context.Background(), task); err == nil {
		t.Fatal("expected unmarshal error for malformed payload")
	}
}

func TestHandleOrderTimeoutCancelMissingService(t *testing.T) {
	c := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte(`{"order_id":42}`))
	if err := c.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("expected missing order service to be skipped, got %v", err)
	}
}
