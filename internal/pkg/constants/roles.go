package constants

const (
	Admin  = "admin"
	Editor = "editor"
	Viewer = "viewer"
)

// ValidRoles is the set of values the profiles.role column may hold.
var ValidRoles = []string{Viewer, Editor, Admin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
