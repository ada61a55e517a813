package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_CountsRequests(t *testing.T) {
	HTTPRequestsTotal.Reset()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/properties", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
	require.Equal(t, http.StatusOK, w.Code)

	counter, err := HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/properties", "200")
	require.NoError(t, err)

	m := &dto.Metric{}
	require.NoError(t, counter.Write(m))
	assert.Equal(t, 1.0, m.Counter.GetValue())
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	HTTPRequestsTotal.Reset()

	r := gin.New()
	r.Use(Middleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	counter, err := HTTPRequestsTotal.GetMetricWithLabelValues("GET", "unmatched", "404")
	require.NoError(t, err)

	m := &dto.Metric{}
	require.NoError(t, counter.Write(m))
	assert.Equal(t, 1.0, m.Counter.GetValue())
}

func TestWebhookEventsTotal_Labels(t *testing.T) {
	WebhookEventsTotal.Reset()

	WebhookEventsTotal.WithLabelValues("charge.success", "applied").Inc()
	WebhookEventsTotal.WithLabelValues("charge.success", "applied").Inc()

	counter, err := WebhookEventsTotal.GetMetricWithLabelValues("charge.success", "applied")
	require.NoError(t, err)

	m := &dto.Metric{}
	require.NoError(t, counter.Write(m))
	assert.Equal(t, 2.0, m.Counter.GetValue())
}

func TestHandler_Serves(t *testing.T) {
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rentora_http_requests_total")
}
