package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/marble-shop/go-backend/pkg/logger"
)

// requestLogger пишет одну строку на запрос через общий Logger.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			l := log.With("request_id", middleware.GetReqID(r.Context()))
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			switch {
			case status >= http.StatusInternalServerError:
				l.Warnf("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start))
			default:
				l.Infof("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start))
			}
		})
	}
}
