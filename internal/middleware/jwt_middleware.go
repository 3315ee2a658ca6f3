package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_shop/internal/utils"
)

// JWTMiddleware guards admin routes with a bearer session token.
type JWTMiddleware struct {
	tokens *utils.TokenIssuer
}

func NewJWTMiddleware(tokens *utils.TokenIssuer) *JWTMiddleware {
	return &JWTMiddleware{tokens: tokens}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, utils.CodeUnauthorized, "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(c, 401, utils.CodeUnauthorized, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			utils.Error(c, 401, utils.CodeInvalidToken, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
