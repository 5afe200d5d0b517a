package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/toranj-shop/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func performHealthCheck(t *testing.T) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	HealthHandler(c)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body failed: %v", err)
	}
	return w.Code, body
}

func TestHealthProbesDependencies(t *testing.T) {
	prev := models.DB
	t.Cleanup(func() { models.DB = prev })

	db, err := gorm.Open(sqlite.Open("file:TestHealthProbesDependencies?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	models.DB = db

	code, body := performHealthCheck(t)
	if code != http.StatusOK {
		t.Fatalf("want 200 got %d", code)
	}
	if body["status"] != "ok" {
		t.Fatalf("want status ok got %v", body["status"])
	}
	checks, ok := body["checks"].(map[string]interface{})
	if !ok {
		t.Fatalf("checks missing: %v", body)
	}
	if checks["database"] != "ok" {
		t.Fatalf("want database ok got %v", checks["database"])
	}
	if checks["redis"] != "disabled" {
		t.Fatalf("want redis disabled got %v", checks["redis"])
	}
	if uptime, _ := body["uptime"].(string); uptime == "" {
		t.Fatalf("uptime missing: %v", body)
	}
}

func TestHealthDegradedKeepsHTTP200(t *testing.T) {
	prev := models.DB
	t.Cleanup(func() { models.DB = prev })
	models.DB = nil

	code, body := performHealthCheck(t)
	if code != http.StatusOK {
		t.Fatalf("degraded health must stay 200, got %d", code)
	}
	if body["status"] != "degraded" {
		t.Fatalf("want status degraded got %v", body["status"])
	}
	checks, _ := body["checks"].(map[string]interface{})
	if checks["database"] != "down" {
		t.Fatalf("want database down got %v", checks["database"])
	}
}
