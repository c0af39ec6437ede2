// Package authorization holds caller roles carried in access tokens.
package authorization

import "encoding/json"

// UserRole is the role claim of an access token. Campaign owners and backers
// are plain users; admins may act on any campaign.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseUserRole maps unknown or empty roles to RoleUser.
func ParseUserRole(s string) UserRole {
	switch role := UserRole(s); role {
	case RoleAdmin, RoleUser:
		return role
	default:
		return RoleUser
	}
}

// UnmarshalJSON decodes the role claim through ParseUserRole.
func (r *UserRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseUserRole(s)
	return nil
}
