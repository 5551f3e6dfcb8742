package middlewares

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/shared/jwtmanager"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/utils"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMiddlewares(t *testing.T) *Middlewares {
	t.Helper()
	cfg := &config.InternalConfig{
		App: config.App{RequestBodyLimitInMegabyte: 1, MaxRequests: 2},
		JWT: config.AppJWT{Secret: "test-secret"},
	}
	jwtManager, err := jwtmanager.NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)
	return NewMiddlewares(zap.NewNop(), jwtManager, cfg)
}

func bearer(t *testing.T, m *Middlewares, identity *models.Identity, ttl time.Duration) string {
	t.Helper()
	out, err := m.JWTManager.CreateToken(context.Background(), &jwtmanager.CreateTokenInput{Identity: identity, TTL: ttl})
	require.NoError(t, err)
	return constvars.BearerPrefix + out.Token
}

func TestAuthenticate(t *testing.T) {
	m := newTestMiddlewares(t)
	identity := &models.Identity{UserID: "user-1", Email: "jane@example.com", Role: constvars.RolePatient}

	var seen *models.Identity
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.Header.Set(constvars.HeaderAuthorization, bearer(t, m, identity, 0))
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "should pass a valid token through")
		assert.Equal(t, identity, seen, "identity should be placed on the context")
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "should return 401 without a token")
		assert.Contains(t, rr.Body.String(), `"UNAUTHORIZED"`)
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.Header.Set(constvars.HeaderAuthorization, bearer(t, m, identity, -time.Minute))
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "should return 401 for an expired token")
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer not.a.jwt")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, "should return 401 for garbage")
	})
}

func TestAuthorize(t *testing.T) {
	m := newTestMiddlewares(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := m.Authenticate(m.Authorize(constvars.RoleDoctor, constvars.RoleReceptionist)(ok))

	tests := []struct {
		role string
		want int
	}{
		{constvars.RoleDoctor, http.StatusOK},
		{constvars.RoleReceptionist, http.StatusOK},
		{constvars.RolePatient, http.StatusForbidden},
		{constvars.RoleAdmin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/appointments/appt-1", nil)
			req.Header.Set(constvars.HeaderAuthorization, bearer(t, m, &models.Identity{UserID: "u", Role: tt.role}, 0))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}

	t.Run("without authenticate", func(t *testing.T) {
		rr := httptest.NewRecorder()
		m.Authorize(constvars.RoleDoctor)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares(t)
	var requestID string
	handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, _ = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	}))

	t.Run("client supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-123")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, "client-123", requestID)
		assert.Equal(t, "client-123", rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.True(t, strings.HasPrefix(requestID, constvars.REQUEST_ID_PREFIX), "generated id should carry the service prefix")
		assert.Equal(t, requestID, rr.Header().Get(constvars.HeaderXRequestID))
	})
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	m := newTestMiddlewares(t)
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), constvars.ErrClientSomethingWrongWithApplication)
}

func TestBodyBuffer(t *testing.T) {
	m := newTestMiddlewares(t)
	var raw []byte
	var reread string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = r.Context().Value(constvars.CONTEXT_RAW_BODY_KEY).([]byte)
		b, _ := io.ReadAll(r.Body)
		reread = string(b)
	})
	handler := m.BodyBuffer(nil)(next)

	t.Run("body is kept for later readers", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))

		assert.Equal(t, `{"a":1}`, string(raw))
		assert.Equal(t, `{"a":1}`, reread)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 2<<20))))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("read errors can be answered by the route", func(t *testing.T) {
		raw = nil
		fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
		rr := httptest.NewRecorder()

		m.BodyBuffer(fallback)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 2<<20))))

		assert.Equal(t, http.StatusAccepted, rr.Code, "fallback should decide the response")
		assert.Nil(t, raw, "next must not run after a read error")
	})
}

func TestRateLimit(t *testing.T) {
	m := newTestMiddlewares(t)
	handler := m.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
