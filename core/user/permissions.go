package user

import (
	"context"

	"github.com/trezcool/masomo-calendar/core/session"
)

// Permissions answers capability checks for the user acting in a context.
// Admins and teachers manage sessions; students may only view them.
type Permissions struct{}

var (
	_ session.Authorizer  = Permissions{} // interface compliance check
	_ session.ActorFinder = Permissions{}
)

func (Permissions) Can(ctx context.Context, action session.Action) bool {
	usr, ok := FromContext(ctx)
	if !ok {
		return false
	}
	switch action {
	case session.ActionView:
		return usr.IsAdmin() || usr.IsTeacher() || usr.IsStudent()
	case session.ActionCreate, session.ActionUpdate, session.ActionDelete:
		return usr.IsAdmin() || usr.IsTeacher()
	default:
		return false
	}
}

// Actor returns the user acting in ctx.
func (Permissions) Actor(ctx context.Context) (interface{}, bool) {
	usr, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	return usr, true
}
