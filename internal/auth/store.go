package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// TokenStore 保存 access token，Load 在没有 token 时返回空串
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenStore 进程内保存，网关使用
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokenStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	return m.Save("")
}

// FileTokenStore 命令行跨次调用保留登录状态，文件权限 0600
type FileTokenStore struct {
	Path string
}

type sessionFile struct {
	AccessToken string    `toml:"access_token"`
	SavedAt     time.Time `toml:"saved_at"`
}

func (f *FileTokenStore) Load() (string, error) {
	bs, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session file: %w", err)
	}
	var sf sessionFile
	if err := toml.Unmarshal(bs, &sf); err != nil {
		return "", fmt.Errorf("parse session file: %w", err)
	}
	return sf.AccessToken, nil
}

func (f *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	bs, err := toml.Marshal(sessionFile{AccessToken: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, bs, 0o600)
}

func (f *FileTokenStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
