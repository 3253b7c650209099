package booking

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the side an actor performs an action on.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	// RoleSystem is used by automated collaborators such as trip-end events.
	RoleSystem Role = "system"
)

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleProvider, RoleSystem:
		return r, nil
	}
	return "", fmt.Errorf("invalid role: %s", s)
}

// Party is a customer or provider identity snapshot stored on a booking.
type Party struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

// Actor is whoever performs an action, used for authorization checks.
type Actor struct {
	Role  Role
	ID    uuid.UUID
	Name  string
	Email string
}

// SystemActor returns the actor used for automated transitions.
func SystemActor() Actor {
	return Actor{Role: RoleSystem, Name: "system"}
}

// Party returns the actor's identity as a booking party.
func (a Actor) Party() Party {
	return Party{ID: a.ID, Name: a.Name, Email: a.Email}
}
