package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role names stored on users.role. Casbin subjects are derived with auth.RoleID.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered identity.
// PasswordHash stores the bcrypt hash used for local login.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                string     `bun:"id,pk,type:uuid"`
	Username          string     `bun:"username,notnull,unique"`
	Email             string     `bun:"email,notnull,unique"`
	Name              string     `bun:"name"`
	PasswordHash      string     `bun:"password_hash,notnull"`
	Bio               string     `bun:"bio"`
	ProfilePictureURL string     `bun:"profile_picture_url"`
	Role              string     `bun:"role,notnull,default:'user'"`
	ResetTokenHash    *string    `bun:"reset_token_hash,unique"` // SHA256 of the outstanding password reset token
	ResetExpiresAt    *time.Time `bun:"reset_expires_at"`
	CreatedAt         time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	LastLoginAt       *time.Time `bun:"last_login_at"`
	DisabledAt        *time.Time `bun:"disabled_at"`
}

// Enabled reports whether the account may authenticate.
func (u *User) Enabled() bool {
	return u != nil && u.DisabledAt == nil
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Follow is a directed edge: FollowerID follows FolloweeID.
type Follow struct {
	bun.BaseModel `bun:"table:follows,alias:f"`

	FollowerID string    `bun:"follower_id,pk,type:uuid"` // FK to users(id)
	FolloweeID string    `bun:"followee_id,pk,type:uuid"` // FK to users(id)
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
