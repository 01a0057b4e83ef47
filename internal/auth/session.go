package auth

import (
	"context"
	"log"
	"sync"
	"time"
)

// Authenticator 由 *Client 实现，测试中可替换
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	CheckSession(ctx context.Context, token string) (*SessionInfo, error)
}

var _ Authenticator = (*Client)(nil)

// Session 当前登录状态。由 main 创建并显式传递，生命周期与进程一致。
type Session struct {
	client Authenticator
	store  TokenStore
	now    func() time.Time

	mu    sync.RWMutex
	token string
	user  *User
}

func NewSession(client Authenticator, store TokenStore) *Session {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	return &Session{client: client, store: store, now: time.Now}
}

// Login 成功后保存 token；失败时保持原状态
func (s *Session) Login(ctx context.Context, identifier, password string) (User, error) {
	res, err := s.client.Login(ctx, identifier, password)
	if err != nil {
		return User{}, err
	}
	if err := s.store.Save(res.Token); err != nil {
		log.Printf("auth: save token failed: %v", err)
	}

	s.mu.Lock()
	s.token = res.Token
	user := res.User
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

// Logout 后端调用失败也会清掉本地 token
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if token != "" {
		if err := s.client.Logout(ctx, token); err != nil {
			log.Printf("auth: logout: %v", err)
		}
	}
	if err := s.store.Clear(); err != nil {
		log.Printf("auth: clear token failed: %v", err)
	}
}

// Verify 启动时或需要时校验会话：本地过期直接作废，否则询问后端。
// 任何失败都会丢弃 token，需要重新登录。
func (s *Session) Verify(ctx context.Context) (User, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		stored, err := s.store.Load()
		if err != nil {
			log.Printf("auth: load token failed: %v", err)
		}
		token = stored
	}
	if token == "" {
		return User{}, false
	}

	if claims, err := ParseClaims(token); err == nil && claims.Expired(s.now()) {
		log.Println("auth: stored token expired")
		s.drop()
		return User{}, false
	}

	info, err := s.client.CheckSession(ctx, token)
	if err != nil {
		log.Printf("auth: session check failed: %v", err)
		s.drop()
		return User{}, false
	}
	if !info.Authenticated {
		s.drop()
		return User{}, false
	}

	s.mu.Lock()
	s.token = token
	user := *info.User
	s.user = &user
	s.mu.Unlock()
	return user, true
}

func (s *Session) drop() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		log.Printf("auth: clear token failed: %v", err)
	}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// Allows 未登录一律拒绝
func (s *Session) Allows(required ...Role) bool {
	u, ok := s.User()
	if !ok {
		return false
	}
	return Allowed(u.Role, required...)
}
