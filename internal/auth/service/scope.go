package service

import (
	"strings"

	"github.com/sellersoft/shopauth/internal/auth/domain"
)

// BuildScope derives the authorization scope string embedded in access
// tokens: for each role a ROLE_<name> entry followed by that role's
// permission names, single-space joined.
//
// Duplicate permission names across roles are kept as-is. Downstream
// checks only test membership, and deduplicating here would hide which role
// contributed what. Order follows the store's name-sorted projection, so
// the same user yields the same scope within a call.
func BuildScope(user domain.User) string {
	var parts []string
	for _, role := range user.Roles {
		parts = append(parts, "ROLE_"+role.Name)
		for _, perm := range role.Permissions {
			parts = append(parts, perm.Name)
		}
	}
	return strings.Join(parts, " ")
}
