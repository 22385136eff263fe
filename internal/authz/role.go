package authz

import "strings"

// Role 用户角色类型
type Role string

const (
	// RoleUser 普通顾客
	RoleUser Role = "user"
	// RoleAdmin 管理员
	RoleAdmin Role = "admin"
)

// ParseRole 解析角色字符串（大小写不敏感，未知值回退为普通用户）
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleUser
	}
}

// String 返回角色的存储形式
func (r Role) String() string {
	return string(r)
}

// IsAdmin 是否管理员角色
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Allow 统一的授权判定：required 为接口要求的最低角色。
// 管理员可以访问任何接口；普通用户只能访问用户级接口。
func Allow(actor Role, required Role) bool {
	if actor == RoleAdmin {
		return true
	}
	return required == RoleUser && actor == RoleUser
}
