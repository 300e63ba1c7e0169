package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRequestTiming_SetsStartTime(t *testing.T) {
	router := gin.New()
	router.Use(RequestTiming())

	var startTime time.Time
	router.GET("/test", func(c *gin.Context) {
		val, exists := c.Get("request_start_time")
		if !exists {
			t.Error("request_start_time not set in context")
		}
		st, ok := val.(time.Time)
		if !ok {
			t.Error("request_start_time is not time.Time")
		}
		startTime = st
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if startTime.IsZero() {
		t.Error("request_start_time was not set")
	}
}

func TestRequestTiming_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	defer otel.SetTracerProvider(prev)

	router := gin.New()
	router.Use(RequestTiming())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	if spans[0].Status().Code != codes.Unset {
		t.Errorf("span status for /ok = %v, want Unset", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("span status for /boom = %v, want Error", spans[1].Status().Code)
	}
}

func TestRequestTiming_ObservesDuration(t *testing.T) {
	router := gin.New()
	router.Use(RequestTiming())
	router.POST("/v1/auth/phone", func(c *gin.Context) {
		c.Status(http.StatusUnprocessableEntity)
	})

	before := testutil.CollectAndCount(observability.RequestDuration)

	req, _ := http.NewRequest("POST", "/v1/auth/phone", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if after := testutil.CollectAndCount(observability.RequestDuration); after < before || after == 0 {
		t.Errorf("RequestDuration series count = %d, want at least one", after)
	}
}

func TestRequestTiming_DifferentStatusCodes(t *testing.T) {
	router := gin.New()
	router.Use(RequestTiming())

	statuses := []int{200, 201, 404, 409, 422, 500}
	for _, status := range statuses {
		status := status
		router.GET("/"+strconv.Itoa(status), func(c *gin.Context) { c.JSON(status, gin.H{}) })
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/"+strconv.Itoa(status), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != status {
				t.Errorf("RequestTiming() status = %v, want %v", w.Code, status)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel(http.StatusConflict); got != "409" {
		t.Errorf("statusLabel(409) = %q, want 409", got)
	}
}
