package auth

import (
	"fmt"
	"strings"

	casbinbunadapter "github.com/terraconstructs/skillshare/internal/auth/bunadapter"
)

// Action constants for authorization checks.
// Owners never need a policy line for their own content; these actions are
// consulted for system-owned resources and admin-only endpoints.

// Post actions
const (
	PostRead         = "post:read"
	PostUpdate       = "post:update"
	PostDelete       = "post:delete"
	PostCreateSystem = "post:create-system"
)

// Comment actions
const (
	CommentUpdate = "comment:update"
	CommentDelete = "comment:delete"
)

// Feed actions
const (
	FeedRead   = "feed:read"
	FeedUpdate = "feed:update"
	FeedDelete = "feed:delete"
)

// Learning progress actions
const (
	ProgressRead   = "progress:read"
	ProgressUpdate = "progress:update"
	ProgressDelete = "progress:delete"
)

// Notification actions
const (
	NotificationUpdate = "notification:update"
	NotificationDelete = "notification:delete"
)

// Admin actions
const (
	AdminPolicyReload = "admin:policy-reload"
	AdminUserManage   = "admin:user-manage"
	AdminFileDelete   = "admin:file-delete"
)

// Wildcard actions (used in policies for broad access)
const (
	PostWildcard         = "post:*"
	CommentWildcard      = "comment:*"
	FeedWildcard         = "feed:*"
	ProgressWildcard     = "progress:*"
	NotificationWildcard = "notification:*"
	AdminWildcard        = "admin:*"
	AllWildcard          = "*"
)

// Object types for Casbin policies
const (
	ObjectTypePost         = "post"
	ObjectTypeComment      = "comment"
	ObjectTypeFeed         = "feed"
	ObjectTypeProgress     = "progress"
	ObjectTypeNotification = "notification"
	ObjectTypeAdmin        = "admin"
	ObjectTypeAll          = "*"
)

// Seeded roles
const (
	RoleNameAdmin     = "admin"
	RoleNameModerator = "moderator"
)

var validActions = map[string]bool{
	PostRead:             true,
	PostUpdate:           true,
	PostDelete:           true,
	PostCreateSystem:     true,
	CommentUpdate:        true,
	CommentDelete:        true,
	FeedRead:             true,
	FeedUpdate:           true,
	FeedDelete:           true,
	ProgressRead:         true,
	ProgressUpdate:       true,
	ProgressDelete:       true,
	NotificationUpdate:   true,
	NotificationDelete:   true,
	AdminPolicyReload:    true,
	AdminUserManage:      true,
	AdminFileDelete:      true,
	PostWildcard:         true,
	CommentWildcard:      true,
	FeedWildcard:         true,
	ProgressWildcard:     true,
	NotificationWildcard: true,
	AdminWildcard:        true,
	AllWildcard:          true,
}

// ValidateAction checks if an action string is valid.
// This prevents typos when granting policies from the CLI.
func ValidateAction(action string) bool {
	return validActions[action]
}

// ValidateObjectType checks if an object type is valid.
func ValidateObjectType(objType string) bool {
	switch objType {
	case ObjectTypePost, ObjectTypeComment, ObjectTypeFeed, ObjectTypeProgress,
		ObjectTypeNotification, ObjectTypeAdmin, ObjectTypeAll:
		return true
	}
	return false
}

// ValidateGrant checks a policy line before `iam grant` stores it. The action
// must belong to the object type unless either side is the wildcard.
func ValidateGrant(objType, action string) error {
	if !ValidateObjectType(objType) {
		return fmt.Errorf("unknown object type %q", objType)
	}
	if !ValidateAction(action) {
		return fmt.Errorf("unknown action %q", action)
	}
	if objType != ObjectTypeAll && action != AllWildcard && !strings.HasPrefix(action, objType+":") {
		return fmt.Errorf("action %q does not apply to object type %q", action, objType)
	}
	return nil
}

// DefaultPolicies returns the policy lines seeded by migrations and
// restored by `iam bootstrap`.
func DefaultPolicies() []casbinbunadapter.CasbinRule {
	return []casbinbunadapter.CasbinRule{
		// admin: everything, including system-owned content
		casbinbunadapter.NewPolicy(RoleID(RoleNameAdmin), ObjectTypeAll, AllWildcard),

		// moderator: may remove system-owned posts and comments
		casbinbunadapter.NewPolicy(RoleID(RoleNameModerator), ObjectTypePost, PostDelete),
		casbinbunadapter.NewPolicy(RoleID(RoleNameModerator), ObjectTypeComment, CommentWildcard),
	}
}

// SeededRoles lists the Casbin subjects created by DefaultPolicies.
func SeededRoles() []string {
	return []string{RoleID(RoleNameAdmin), RoleID(RoleNameModerator)}
}
