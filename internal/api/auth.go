package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "bad_request", "identifier and password are required")
		return
	}
	res, err := s.Auth.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		fail(c, http.StatusUnauthorized, "unauthorized", strings.TrimPrefix(err.Error(), "auth: login: "))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": res.Token,
		"token_type":   "bearer",
		"user":         res.User,
	})
}

// logout 后端失败也返回成功，客户端总是清掉本地 token
func (s *Server) logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		_ = s.Auth.Logout(c.Request.Context(), token)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) session(c *gin.Context) {
	info, err := s.Auth.CheckSession(c.Request.Context(), bearerToken(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "user": nil})
		return
	}
	c.JSON(http.StatusOK, info)
}
