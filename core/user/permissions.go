package user

import "strings"

const allSections = "*"

// routeAccess lists the app sections each role may open. A section grants access to its sub-paths.
var routeAccess = map[Role][]string{
	RoleSuperAdmin: {allSections},
	RoleAdmin:      {"/dashboard", "/students", "/teachers", "/classes", "/subjects", "/exams"},
	RoleTeacher:    {"/dashboard", "/students", "/attendance", "/exams"},
	RoleAccountant: {"/dashboard", "/fees", "/students"},
}

// HasAccess reports whether role may access path. Unknown roles have no access.
func HasAccess(role Role, path string) bool {
	sections, ok := routeAccess[role]
	if !ok {
		return false
	}
	for _, section := range sections {
		if section == allSections || strings.HasPrefix(path, section) {
			return true
		}
	}
	return false
}

// Sections returns a copy of the sections role may access.
func Sections(role Role) []string {
	return append([]string(nil), routeAccess[role]...)
}
