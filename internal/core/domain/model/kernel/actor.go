package kernel

import (
	"fmt"

	"foodtrack/internal/pkg/errs"
)

// Role is the verified role an authentication layer attaches to a caller.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
	RoleCourier    Role = "courier"
	RoleAdmin      Role = "admin"
	// RoleSystem is used by the service itself (dispatch, payment callbacks). It is never
	// accepted from a client token.
	RoleSystem Role = "system"
)

func (r Role) String() string {
	return string(r)
}

// ParseClientRole accepts the roles a client token may carry.
func ParseClientRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleRestaurant, RoleCourier, RoleAdmin:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a client role", s))
	}
}

// Actor is an authenticated caller: an identity plus the role it acts in.
type Actor struct {
	ID   UUID
	Role Role
}

// SystemActor is the identity the service uses for automatic transitions.
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) String() string {
	if a.Role == RoleSystem {
		return string(RoleSystem)
	}
	return fmt.Sprintf("%s:%s", a.Role, a.ID)
}
