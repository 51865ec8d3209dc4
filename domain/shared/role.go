package shared

// Role is the actor role claim supplied by the external identity
// collaborator. The engine trusts the claim but enforces role ordering
// itself (approval chains, acceptance verification).
type Role string

const (
	RoleResident       Role = "RESIDENT"
	RoleTechnician     Role = "TECHNICIAN"
	RoleTechnicianLead Role = "TECHNICIAN_LEAD"
	RoleManager        Role = "MANAGER"
	RoleAdmin          Role = "ADMIN"
)

// ParseRole validates a role claim string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleResident, RoleTechnician, RoleTechnicianLead, RoleManager, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// Actor is the identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}
