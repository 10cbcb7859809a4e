package logging

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/giovaniif/e-commerce/pix/infra/loki"
	"github.com/giovaniif/e-commerce/pix/infra/requestid"
)

// New builds the JSON logger for the service. When lokiURL is set the output
// is also pushed to Loki; the returned close function flushes it.
func New(serviceName, lokiURL string) (*slog.Logger, func()) {
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if w := loki.NewWriter(lokiURL, map[string]string{"job": serviceName}); w != nil {
		out = io.MultiWriter(os.Stdout, w)
		closeFn = func() { _ = w.Close() }
	}
	return NewWithWriter(out, serviceName), closeFn
}

func NewWithWriter(out io.Writer, serviceName string) *slog.Logger {
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(contextHandler{Handler: handler}).With(slog.String("service", serviceName))
}

// contextHandler adds the request id carried by ctx to every record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}

// Middleware logs one line per request, replacing gin's default logger.
func Middleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
