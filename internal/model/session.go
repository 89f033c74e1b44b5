package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSales    Role = "sales"
	RoleCustomer Role = "customer"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleSales, RoleCustomer:
		return Role(raw), true
	default:
		return "", false
	}
}

// Session is the server-side record behind an issued token. It is created at
// login, deleted at logout and never written by any other component.
type Session struct {
	Token     string
	UserID    uuid.UUID
	Role      Role
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	Email  string
	Name   string
	Token  string
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsSales() bool    { return p.Role == RoleSales }
func (p Principal) IsCustomer() bool { return p.Role == RoleCustomer }

// IsAnonymous reports whether the request carried no session at all. Only the
// demo ingestion path accepts anonymous principals.
func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil && p.Token == ""
}
