package lib

import "github.com/newsdesk/newsdesk/lib/models"

const (
	PermAddPost    = "post:add"
	PermChangePost = "post:change"
	PermDeletePost = "post:delete"
)

var rolePermissions = map[string][]string{
	models.RoleReader: {},
	models.RoleAuthor: {
		PermAddPost,
		PermChangePost,
	},
	models.RoleAdmin: {
		PermAddPost,
		PermChangePost,
		PermDeletePost,
	},
}

func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
