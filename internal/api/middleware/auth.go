package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gabaylakad/backend/internal/domain"
	"github.com/gabaylakad/backend/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey      contextKey = "userID"
	UserEmailKey   contextKey = "userEmail"
	UserRoleKey    contextKey = "userRole"
	AccessTokenKey contextKey = "accessToken"
)

// RenewedTokenHeader carries the sliding-expiration replacement token on
// every authenticated response. The presented token stays valid until its
// own expiry.
const RenewedTokenHeader = "X-Renewed-Token"

func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			claims, renewed, err := authService.VerifyAccessToken(r.Context(), raw)
			if err != nil {
				zap.L().Debug("token verification failed", zap.Error(err))
				switch {
				case errors.Is(err, domain.ErrTokenRevoked):
					unauthorized(w, http.StatusForbidden, "Token revoked")
				case errors.Is(err, domain.ErrInvalidToken):
					unauthorized(w, http.StatusForbidden, "Invalid token")
				default:
					unauthorized(w, http.StatusUnauthorized, "Unauthorized")
				}
				return
			}

			w.Header().Set(RenewedTokenHeader, renewed)

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			ctx = context.WithValue(ctx, AccessTokenKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole restricts a route to tokens carrying one of the given role
// claims. Must be mounted after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := GetUserRole(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			unauthorized(w, http.StatusForbidden, "Insufficient role")
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func unauthorized(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message":"` + message + `"}`))
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}

func GetAccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(AccessTokenKey).(string)
	return token, ok
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		w.Header().Set("Access-Control-Expose-Headers", RenewedTokenHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
