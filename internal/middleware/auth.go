package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/malharwork/agneez-poc/internal/util"
)

// StudentAuth validates the student token and puts the claims on the
// request context.
func StudentAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseStudentToken(tokenString, secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("student", claims)
		c.Next()
	}
}
