package models

import "time"

// Role determines which privileged operations a user may call.
type Role string

const (
	RoleMember Role = "member"
	RoleMinter Role = "minter"
	RoleAdmin  Role = "admin"
)

// User represents a registered participant. Every user carries a ledger
// address used by the token ledgers, the asset registry, and the vault
// to refer to them as a holder.
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	Address             string     `gorm:"uniqueIndex;not null" json:"address"`
	Role                Role       `gorm:"not null;default:'member'" json:"role"`
	DisplayName         string     `json:"display_name"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}
