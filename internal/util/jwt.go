package util

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/malharwork/agneez-poc/internal/model"
)

// StudentClaims carries the student identity inside the access token. No
// password is involved; the token is the whole identity.
type StudentClaims struct {
	StudentID string      `json:"student_id"`
	Grade     int         `json:"grade"`
	Board     model.Board `json:"board"`
	jwt.RegisteredClaims
}

func GenerateStudentToken(student *model.Student, secret string, expiration time.Duration) (string, error) {
	claims := &StudentClaims{
		StudentID: student.StudentID,
		Grade:     student.Grade,
		Board:     student.Board,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseStudentToken(tokenString, secret string) (*StudentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StudentClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*StudentClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// StudentFromContext returns the authenticated student claims, nil when the
// request is unauthenticated.
func StudentFromContext(c *gin.Context) *StudentClaims {
	v, exists := c.Get("student")
	if !exists {
		return nil
	}
	claims, ok := v.(*StudentClaims)
	if !ok {
		return nil
	}
	return claims
}
