package auth

import "strings"

// Role 账号等级，来自登录返回与 JWT 的 role 字段
type Role string

const (
	Standard Role = "standard"
	Pro      Role = "pro"
	Premium  Role = "premium"
)

// 各功能所需的账号等级；为空表示登录即可
var (
	PolicyNews       []Role
	PolicyTTS        []Role
	PolicyAudioTools = []Role{Pro, Premium}
	PolicyVoiceClone = []Role{Premium}
)

// ParseRole 未知或为空时按 standard 处理，与后端默认值一致
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case Standard, Pro, Premium:
		return r
	default:
		return Standard
	}
}

// Allowed 纯函数：required 为空时放行，否则 role 必须在 required 之中
func Allowed(role Role, required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
