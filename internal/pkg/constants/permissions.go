package constants

const (
	ViewPackages   = "view_packages"
	ManagePackages = "manage_packages"
	DeletePackages = "delete_packages"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewPackages:   {Viewer, Editor, Admin},
	ManagePackages: {Editor, Admin},
	DeletePackages: {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
