package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"

  "github.com/medibot-org/medibot-backend/internal/logger"
  "github.com/medibot-org/medibot-backend/internal/services"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(baseLog *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLog := baseLog.With("middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLog, authService: authService}
}

// RequireAuth validates the bearer token and attaches the caller identity to
// the request context before the handler runs.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    header := c.GetHeader("Authorization")
    if header == "" || !strings.HasPrefix(header, "Bearer ") {
      am.log.Warn("Request without a bearer token", "path", c.Request.URL.Path)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed authorization header"})
      return
    }
    tokenString := strings.TrimPrefix(header, "Bearer ")
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      am.log.Warn("Request with an invalid bearer token", "path", c.Request.URL.Path)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired access token"})
      return
    }
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}
