package client

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSeller  Role = "seller"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func ParseRole(raw string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleSeller, RoleManager, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Scope is the visibility filter of one caller. A seller sees its own clients,
// a manager sees its own plus its team's, an admin sees everything.
type Scope struct {
	Role        Role
	UserID      string
	TeamUserIDs []string
}

// OwnerIDs returns the owners visible under the scope; nil means unrestricted.
func (s Scope) OwnerIDs() []string {
	switch s.Role {
	case RoleAdmin:
		return nil
	case RoleManager:
		ids := make([]string, 0, len(s.TeamUserIDs)+1)
		ids = append(ids, s.UserID)
		for _, id := range s.TeamUserIDs {
			if id != "" && id != s.UserID {
				ids = append(ids, id)
			}
		}
		return ids
	default:
		return []string{s.UserID}
	}
}

func (s Scope) Visible(ownerID string) bool {
	ids := s.OwnerIDs()
	if ids == nil {
		return true
	}
	for _, id := range ids {
		if id == ownerID {
			return true
		}
	}
	return false
}

// ResolveOwner decides who owns a newly created client. An empty request falls
// back to the caller.
func (s Scope) ResolveOwner(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == s.UserID {
		return s.UserID, nil
	}
	if s.Role != RoleSeller && s.Visible(requested) {
		return requested, nil
	}
	return "", &ShapeValidationError{
		Field:   "ownerId",
		Message: fmt.Sprintf("owner %s is outside the caller's scope", requested),
	}
}
