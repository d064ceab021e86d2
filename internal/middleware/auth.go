package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/poster-threads/pkg/response"
)

// UserIDKey gin 上下文中的用户 id
const UserIDKey = "user_id"

// Auth 校验 HS256 Bearer token，并把 userId 声明写入上下文。
// token 的签发不在本服务内。
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	keyFunc := func(*jwt.Token) (interface{}, error) { return key, nil }

	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, keyFunc, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, "token expired")
				return
			}
			response.Unauthorized(c, "invalid token")
			return
		}

		userID, err := claimUserID(claims)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID 取当前请求的用户 id；Auth 之后必然存在
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// userId 可能是数字（整型主键）或字符串
func claimUserID(claims jwt.MapClaims) (string, error) {
	switch v := claims["userId"].(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	}
	return "", fmt.Errorf("token has no usable userId claim")
}
