package middlewares

import (
	"hospital-service/internal/app/services/shared/jwtmanager"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Authenticate resolves the bearer token into an Identity on the request context.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, constvars.BearerPrefix) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, constvars.BearerPrefix))
		out, err := m.JWTManager.VerifyToken(r.Context(), &jwtmanager.VerifyTokenInput{Token: token})
		if err != nil {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(err))
			return
		}
		if !out.Valid {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenInvalidOrExpired(nil))
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithIdentity(r.Context(), out.Identity)))
	})
}

// Authorize admits only callers whose role is listed. It must run after Authenticate.
func (m *Middlewares) Authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := utils.GetIdentity(r.Context())
			if !ok {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrIdentityMissing(nil))
				return
			}
			if !identity.HasRole(roles...) {
				requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
				utils.LogSecurityEvent(m.Log, "role_not_allowed", requestID, "warn",
					zap.String(constvars.LoggingUserIDKey, identity.UserID),
					zap.String(constvars.LoggingRoleKey, identity.Role),
					zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				)
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrForbidden(nil, identity.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
