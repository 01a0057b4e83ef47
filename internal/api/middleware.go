package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsVoice/internal/auth"
)

const (
	ctxUser  = "user"
	ctxToken = "token"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireSession 每个请求都向认证服务校验 token
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			fail(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		info, err := s.Auth.CheckSession(c.Request.Context(), token)
		if err != nil {
			log.Printf("api: session check failed: %v", err)
			fail(c, http.StatusBadGateway, "upstream_error", "session check failed")
			return
		}
		if !info.Authenticated || info.User == nil {
			fail(c, http.StatusUnauthorized, "unauthorized", "session expired")
			return
		}
		c.Set(ctxUser, *info.User)
		c.Set(ctxToken, token)
		c.Next()
	}
}

func requireRole(required ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !auth.Allowed(u.Role, required...) {
			names := make([]string, len(required))
			for i, r := range required {
				names[i] = string(r)
			}
			fail(c, http.StatusForbidden, "forbidden", "requires role: "+strings.Join(names, ", "))
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (auth.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return auth.User{}, false
	}
	u, ok := v.(auth.User)
	return u, ok
}
