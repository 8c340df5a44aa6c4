package calendar

import (
	"github.com/GNOME/libgdata-sub004/pkg/acl"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// AccessRule is an access-control rule on a calendar. Its role is one
// of the AccessRole constants or acl.RoleNone, and it crosses the wire
// in JSON.
type AccessRule struct {
	acl.Rule
}

// NewAccessRule creates a rule granting role to the given scope.
func NewAccessRule(role, scopeType, scopeValue string) *AccessRule {
	return &AccessRule{Rule: *acl.NewRule(role, scopeType, scopeValue)}
}

// ContentType implements parsable.Payload.
func (r *AccessRule) ContentType() string { return parsable.ContentTypeJSON }
