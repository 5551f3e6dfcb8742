package middlewares

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// BodyBuffer reads the request body up to the configured limit, stores the raw
// bytes in the context and replaces the body so handlers can decode it again.
// A body that cannot be read goes to onReadError, or a 400 when it is nil.
func (m *Middlewares) BodyBuffer(onReadError http.HandlerFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := int64(m.InternalConfig.App.RequestBodyLimitInMegabyte) << 20
			if limit <= 0 {
				limit = 1 << 20
			}

			bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				m.Log.Warn("Middlewares.BodyBuffer cannot read body",
					zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
					zap.String(constvars.LoggingEndpointKey, r.URL.Path),
					zap.Error(err),
				)
				if onReadError != nil {
					onReadError(w, r)
					return
				}
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrReadBody(err))
				return
			}

			ctx := context.WithValue(r.Context(), constvars.CONTEXT_RAW_BODY_KEY, bodyBytes)
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
