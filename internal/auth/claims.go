package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 后端签发的 JWT 载荷。客户端没有密钥，只读取不校验，签名由后端 /api/session 校验。
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims 读取 token 中的载荷，不验证签名
func ParseClaims(token string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	return &c, nil
}

// Expired 没有 exp 时视为未过期，交给后端判断
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}

// User 由载荷还原的用户信息
func (c *Claims) User() User {
	return User{
		Username: c.Subject,
		Email:    c.Email,
		Role:     ParseRole(c.Role),
	}
}
