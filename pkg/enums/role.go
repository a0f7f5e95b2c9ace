package enums

import "fmt"

// Role represents a bank-side permissions role attached to an account.
type Role string

const (
	RoleCustomer         Role = "customer"
	RoleAccountExecutive Role = "account_executive"
	RoleBranchManager    Role = "branch_manager"
	RoleAdmin            Role = "admin"
	RoleSuperAdmin       Role = "super_admin"
	RoleTeller           Role = "teller"
)

var validRoles = []Role{
	RoleCustomer,
	RoleAccountExecutive,
	RoleBranchManager,
	RoleAdmin,
	RoleSuperAdmin,
	RoleTeller,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// Roles returns the closed set of recognized roles.
func Roles() []Role {
	return append([]Role(nil), validRoles...)
}
