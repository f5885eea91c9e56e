package domain

import "fmt"

// Role is one of the closed set of campus roles.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

// Capability names an action guarded by the authorization middleware.
type Capability string

const (
	CapabilityReadSelf      Capability = "read_self"
	CapabilityReadDirectory Capability = "read_directory"
	CapabilityTakeCourses   Capability = "take_courses"
	CapabilityTeachCourses  Capability = "teach_courses"
	CapabilityManageUsers   Capability = "manage_users"
	CapabilityPublishNews   Capability = "publish_news"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleStudent: {
		CapabilityReadSelf:      {},
		CapabilityReadDirectory: {},
		CapabilityTakeCourses:   {},
	},
	RoleProfessor: {
		CapabilityReadSelf:      {},
		CapabilityReadDirectory: {},
		CapabilityTeachCourses:  {},
	},
	RoleAdmin: {
		CapabilityReadSelf:      {},
		CapabilityReadDirectory: {},
		CapabilityTeachCourses:  {},
		CapabilityManageUsers:   {},
		CapabilityPublishNews:   {},
	},
}

// ParseRole validates a role string against the enumeration.
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if _, ok := roleCapabilities[role]; !ok {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Can(capability Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}
