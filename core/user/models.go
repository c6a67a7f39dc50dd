package user

import (
	"context"
	"strings"
)

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner, RoleAdminPrincipal}
	TeacherRoles = []string{RoleTeacher}
	StudentRoles = []string{RoleStudent}

	// System is the user the admin CLI acts as.
	System = User{ID: "system", Name: "System", Username: "system", Roles: []string{RoleAdminOwner}}
)

type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (u User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u User) IsTeacher() bool {
	return u.RoleStartsWith(RoleTeacher)
}

func (u User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying usr as the acting user.
func NewContext(ctx context.Context, usr User) context.Context {
	return context.WithValue(ctx, ctxKey{}, usr)
}

// FromContext returns the acting user stored in ctx, if any.
func FromContext(ctx context.Context) (User, bool) {
	usr, ok := ctx.Value(ctxKey{}).(User)
	return usr, ok
}
