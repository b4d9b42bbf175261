package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"go-jobmatch-backend/internal/delivery/http/response"
	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/audit"
	"go-jobmatch-backend/pkg/auth"
	"go-jobmatch-backend/pkg/logger"
)

// AuthMiddleware accepts HS256 tokens signed with secret and RS256 tokens
// resolved through jwks. The local user row is created on first sight.
func AuthMiddleware(jwksProvider *auth.Provider, secret string, authUC domain.AuthUsecase, auditLog *audit.Logger) gin.HandlerFunc {
	if auditLog == nil {
		auditLog = audit.Nop()
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if secret == "" {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return []byte(secret), nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok && jwksProvider != nil {
			return jwksProvider.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	reject := func(c *gin.Context, message, reason string) {
		auditLog.UnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetString("RequestID"), reason)
		response.Error(c, http.StatusUnauthorized, message, nil)
		c.Abort()
	}

	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
			tokenString = cookie
		}

		if tokenString == "" {
			reject(c, "Authorization header or auth_token cookie required", "missing_token")
			return
		}

		token, err := jwt.Parse(tokenString, keyFunc, jwt.WithValidMethods([]string{"HS256", "RS256"}))
		if err != nil || !token.Valid {
			logger.Log.Debug("token validation failed", "error", err)
			reject(c, "Invalid token", "invalid_token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject(c, "Invalid claims", "invalid_claims")
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			reject(c, "Invalid claims", "missing_subject")
			return
		}

		if err := authUC.EnsureUserExists(c.Request.Context(), &domain.User{ID: sub, Email: email}); err != nil {
			logger.Log.Error("failed to sync user", "error", err)
			response.Error(c, http.StatusInternalServerError, "Failed to load user", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
