package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/metrics"
)

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
	buffer     bytes.Buffer
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write keeps the body only for error responses.
func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if w.statusCode >= http.StatusBadRequest {
		w.buffer.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return "unknown"
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("handler", routeName(r)),
			zap.Int("status", wrw.statusCode),
			zap.Duration("took", time.Since(start)),
		}
		switch {
		case wrw.statusCode >= http.StatusInternalServerError:
			metrics.OperationErrorsTotal.WithLabelValues(routeName(r)).Inc()
			s.logger.Error("request failed", append(fields, zap.ByteString("response", wrw.buffer.Bytes()))...)
		case wrw.statusCode >= http.StatusBadRequest:
			s.logger.Warn("request rejected", append(fields, zap.ByteString("response", wrw.buffer.Bytes()))...)
		default:
			s.logger.Debug("request served", fields...)
		}
	})
}
