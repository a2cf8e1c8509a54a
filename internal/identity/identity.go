// Package identity holds the caller/user model: roles, advisor-client pairs,
// and the read-only lookups the role-scope resolver needs.
package identity

import "context"

// Role is the caller's authenticated role.
type Role string

const (
	RoleResident   Role = "resident"
	RoleAdvisor    Role = "advisor"
	RoleRegulator  Role = "regulator"
	RoleSupervisor Role = "supervisor"
)

// User is the minimal identity record the resolver and dashboards need.
type User struct {
	ID       int
	FullName string
	Email    string
	Role     Role
}

// AdvisorClient is an ordered (advisor, resident) pair. An advisor may only
// access a resident's pension data through a matching pair.
type AdvisorClient struct {
	AdvisorID  int
	ResidentID int
}

// Lookup is the read-only view over the user/advisor-client tables. It is
// satisfied by a real database-backed implementation (internal/store) and by
// an in-memory fake for tests.
type Lookup interface {
	// User returns the caller record, or (User{}, false) if the id is unknown.
	User(ctx context.Context, id int) (User, bool, error)
	// IsClient reports whether an AdvisorClient(advisorID, residentID) pair exists.
	IsClient(ctx context.Context, advisorID, residentID int) (bool, error)
}
