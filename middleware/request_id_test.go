package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/meninojhony/modec-challenger/pkg/logger"
)

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	var fromGin, fromRequestCtx string

	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		fromGin = GetRequestID(c)
		fromRequestCtx, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	header := w.Header().Get("X-Request-ID")
	if header == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if fromGin != header {
		t.Errorf("gin context id %q does not match header %q", fromGin, header)
	}
	if fromRequestCtx != header {
		t.Errorf("request context id %q does not match header %q", fromRequestCtx, header)
	}
}

func TestRequestIDHonorsCallerSupplied(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "caller-supplied-id" {
		t.Errorf("expected caller-supplied id to be kept, got %q", got)
	}
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if got := GetRequestID(c); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
}
