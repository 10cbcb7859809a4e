package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware)
	r.GET("/charges/:txid", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/charges/:txid", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/charges/abc", nil))
	after := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/charges/:txid", "200"))
	require.Equal(t, before+1, after)

	beforeUnmatched := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, beforeUnmatched+1, testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestObserveGateway(t *testing.T) {
	beforeOK := testutil.ToFloat64(GatewayRequestTotal.WithLabelValues("test_op", "success"))
	beforeErr := testutil.ToFloat64(GatewayRequestTotal.WithLabelValues("test_op", "error"))

	ObserveGateway("test_op", time.Now(), nil)
	ObserveGateway("test_op", time.Now(), errors.New("boom"))

	require.Equal(t, beforeOK+1, testutil.ToFloat64(GatewayRequestTotal.WithLabelValues("test_op", "success")))
	require.Equal(t, beforeErr+1, testutil.ToFloat64(GatewayRequestTotal.WithLabelValues("test_op", "error")))
}
