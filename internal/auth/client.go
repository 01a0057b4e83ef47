package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	authClientTimeout    = 10 * time.Second
	authMaxResponseBytes = 64 << 10
)

// ErrUnauthorized 会话无效或已过期
var ErrUnauthorized = errors.New("auth: not authenticated")

// User 登录与会话接口返回的用户信息
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// DisplayName 有邮箱优先显示邮箱
func (u User) DisplayName() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

type LoginResult struct {
	Token string
	User  User
}

type SessionInfo struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user"`
}

// Client 调用认证服务：/api/login、/api/logout、/api/session
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: authClientTimeout},
	}
}

// Login 用用户名或邮箱登录，成功时返回 bearer token
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Success     bool   `json:"success"`
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
		Detail      any    `json:"detail"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, authMaxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("auth: login: status %d: decode: %w", resp.StatusCode, err)
	}
	if !payload.Success || payload.AccessToken == "" {
		return nil, fmt.Errorf("auth: login: %s", loginFailure(payload.Detail, payload.Error))
	}
	payload.User.Role = ParseRole(string(payload.User.Role))
	return &LoginResult{Token: payload.AccessToken, User: payload.User}, nil
}

// detail 可能是字符串，也可能是 FastAPI 的校验错误数组
func loginFailure(detail any, errMsg string) string {
	if s, ok := detail.(string); ok && s != "" {
		return s
	}
	if errMsg != "" {
		return errMsg
	}
	return "login failed"
}

// Logout 通知后端登出；本地 token 是否清理由调用方决定
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, authMaxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: logout: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// CheckSession 校验 token；未认证时返回 Authenticated=false 而不是错误
func (c *Client) CheckSession(ctx context.Context, token string) (*SessionInfo, error) {
	if token == "" {
		return &SessionInfo{}, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/session", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &SessionInfo{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: session: unexpected status %d", resp.StatusCode)
	}

	var info SessionInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, authMaxResponseBytes)).Decode(&info); err != nil {
		return nil, fmt.Errorf("auth: session: decode: %w", err)
	}
	if info.Authenticated && info.User == nil {
		info.Authenticated = false
	}
	if info.User != nil {
		info.User.Role = ParseRole(string(info.User.Role))
	}
	return &info, nil
}
