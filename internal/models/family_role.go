package models

import "strings"

// FamilyRole is the closed set of kinship roles a user can pick during
// registration. The stored key is stable; the label is presentation only.
type FamilyRole string

const (
	RoleGrandma  FamilyRole = "grandma"
	RoleGrandpa  FamilyRole = "grandpa"
	RoleMom      FamilyRole = "mom"
	RoleDad      FamilyRole = "dad"
	RoleDaughter FamilyRole = "daughter"
	RoleSon      FamilyRole = "son"
)

var familyRoleOrder = []FamilyRole{
	RoleGrandma,
	RoleGrandpa,
	RoleMom,
	RoleDad,
	RoleDaughter,
	RoleSon,
}

var familyRoleLabels = map[FamilyRole]string{
	RoleGrandma:  "Бабушка",
	RoleGrandpa:  "Дедушка",
	RoleMom:      "Мама",
	RoleDad:      "Папа",
	RoleDaughter: "Дочь",
	RoleSon:      "Сын",
}

func AllFamilyRoles() []FamilyRole {
	roles := make([]FamilyRole, len(familyRoleOrder))
	copy(roles, familyRoleOrder)
	return roles
}

func (role FamilyRole) Label() string {
	return familyRoleLabels[role]
}

// ParseFamilyRole accepts either the stored key or the human label,
// case-insensitively. The mobile client historically sends labels.
func ParseFamilyRole(value string) (FamilyRole, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	for role, label := range familyRoleLabels {
		if strings.EqualFold(trimmed, string(role)) || strings.EqualFold(trimmed, label) {
			return role, true
		}
	}
	return "", false
}
