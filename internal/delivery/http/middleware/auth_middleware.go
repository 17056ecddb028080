package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"smart-opd/pkg/jwt"
	"smart-opd/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type contextKey string

const (
	ContextKeyUserID     contextKey = "user_id"
	ContextKeyEmail      contextKey = "email"
	ContextKeyRoleID     contextKey = "role_id"
	ContextKeyDepartment contextKey = "department"
	ContextKeyTokenID    contextKey = "token_id"
)

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

// Authenticate validates the bearer token and checks it against the Redis
// allowlist, so a logout revokes the token before it expires.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		key := fmt.Sprintf("access_token:%s:%s", claims.UserID, claims.TokenID)
		exists, err := m.redisClient.Exists(r.Context(), key).Result()
		if err != nil || exists == 0 {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, ContextKeyEmail, claims.Email)
		ctx = context.WithValue(ctx, ContextKeyRoleID, claims.RoleID)
		ctx = context.WithValue(ctx, ContextKeyDepartment, claims.Department)
		ctx = context.WithValue(ctx, ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Context getters

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}

func GetEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(ContextKeyEmail).(string)
	return email, ok
}

func GetRoleID(ctx context.Context) (int, bool) {
	roleID, ok := ctx.Value(ContextKeyRoleID).(int)
	return roleID, ok
}

func GetDepartment(ctx context.Context) (string, bool) {
	department, ok := ctx.Value(ContextKeyDepartment).(string)
	return department, ok
}

func GetTokenID(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(ContextKeyTokenID).(string)
	return tokenID, ok
}
