// Package authz decides which task operations a subject may perform.
//
// Roles are mapped to permissions in exactly one place (roleGrants). A
// permission granted by a role applies to every task; permissions granted by
// a relation (creator, assignee) apply only to tasks the subject is related to.
// Everything here is pure: no I/O and no logging.
package authz

import "slices"

// Role names carried in tokens and stored in user_roles.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// Permission is a single operation on a task.
type Permission uint8

const (
	// Read allows fetching a task.
	Read Permission = 1 << iota
	// Update allows changing title, description, due date and status.
	Update
	// Reassign allows changing the assignee during an update.
	Reassign
	// Delete allows removing a task permanently.
	Delete
	// ViewAll allows listing every task regardless of relation.
	ViewAll
)

// PermissionSet is a bit set of permissions.
type PermissionSet uint8

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool { return s&PermissionSet(p) != 0 }

func setOf(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s |= PermissionSet(p)
	}
	return s
}

var (
	roleGrants = map[string]PermissionSet{
		RoleAdmin: setOf(Read, Update, Reassign, Delete, ViewAll),
		RoleUser:  0,
	}

	creatorGrants  = setOf(Read, Update, Reassign, Delete)
	assigneeGrants = setOf(Read, Update)
)

func (p Permission) String() string {
	switch p {
	case Read:
		return "read"
	case Update:
		return "update"
	case Reassign:
		return "reassign"
	case Delete:
		return "delete"
	case ViewAll:
		return "view_all"
	default:
		return "unknown"
	}
}

// Subject is the resolved caller: a persisted user id plus role names.
type Subject struct {
	UserID int64
	Roles  []string
}

// Resource is the part of a task the policy looks at.
// A nil AssigneeID means the task is assigned to nobody.
type Resource struct {
	CreatorID  int64
	AssigneeID *int64
}

// Global returns the permissions the subject's roles grant on every task.
// Unknown role names grant nothing.
func Global(roles []string) PermissionSet {
	var s PermissionSet
	for _, r := range roles {
		s |= roleGrants[r]
	}
	return s
}

// IsAdmin reports whether roles contain the administrator role.
func IsAdmin(roles []string) bool {
	return slices.Contains(roles, RoleAdmin)
}

// Effective returns every permission subj holds on res.
func Effective(subj Subject, res Resource) PermissionSet {
	s := Global(subj.Roles)
	if subj.UserID != 0 && res.CreatorID == subj.UserID {
		s |= creatorGrants
	}
	if res.AssigneeID != nil && subj.UserID != 0 && *res.AssigneeID == subj.UserID {
		s |= assigneeGrants
	}
	return s
}

// Allows reports whether subj may perform p on res.
func Allows(subj Subject, p Permission, res Resource) bool {
	return Effective(subj, res).Has(p)
}

// SeesAll reports whether subj may list every task. Subjects without it see
// only tasks they created or are assigned to.
func SeesAll(subj Subject) bool {
	return Global(subj.Roles).Has(ViewAll)
}
