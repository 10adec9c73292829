package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Principal is the identity attached to each request. The decision engine
// takes it as an explicit parameter rather than reading request headers.
type Principal struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// CanTerminate reports whether a role may trigger the guarded termination
// workflow.
func CanTerminate(role string) bool {
	return role == RoleHR || role == RoleManager
}

// CanAdminister reports whether a role may change system settings.
func CanAdminister(role string) bool {
	return role == RoleAdmin || role == RoleHR
}

// RoleIn reports membership in a role set; used by the RBAC middleware.
func RoleIn(role string, allowed ...string) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
