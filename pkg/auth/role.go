package auth

import (
	"strings"
	"time"
)

// Role is a client-trusted capability label. It is never verified against
// an identity provider; it only gates which operations a caller may invoke.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// ParseRole resolves a label case-insensitively. Unknown labels are VIEWER.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleEditor:
		return r
	}
	return RoleViewer
}

// CanRecord reports whether the role may record events, force states,
// correct timestamps, drive timers and publish the board.
func (r Role) CanRecord() bool {
	return r == RoleAdmin || r == RoleEditor
}

// CanManage reports whether the role may add, edit and delete entities
func (r Role) CanManage() bool {
	return r == RoleAdmin
}

// Session is a cached login. The token is what clients present on later calls.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor is whoever invokes a command, as far as the command surface knows
type Actor struct {
	Username string
	Role     Role
}

// ActorFromSession returns the actor a session speaks for
func ActorFromSession(s *Session) Actor {
	return Actor{Username: s.Username, Role: s.Role}
}
