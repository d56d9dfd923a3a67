package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"skillmesh/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const ctxWalletKey = "wallet"

// AuthMiddleware verifies the bearer token minted by the external wallet
// service and stores the caller's wallet address on the request context.
type AuthMiddleware struct {
	tokenService *jwt.Service
}

func NewAuthMiddleware(tokenService *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxWalletKey, claims.Wallet)
		c.Next()
	}
}

func GetWallet(c *gin.Context) (string, bool) {
	value, exists := c.Get(ctxWalletKey)
	if !exists {
		return "", false
	}

	wallet, ok := value.(string)
	return wallet, ok && wallet != ""
}
