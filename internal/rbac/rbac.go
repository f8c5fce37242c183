package rbac

// Role constants
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Permission constants
const (
	PermManageContent     = "manage_content"
	PermViewMutations     = "view_mutations"
	PermRollbackMutations = "rollback_mutations"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermManageContent, PermViewMutations, PermRollbackMutations,
	},
	RoleEditor: {
		PermManageContent, PermViewMutations,
		// Editor CANNOT: PermRollbackMutations
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
