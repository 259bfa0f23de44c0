package flows

import (
	"context"
	"errors"
)

// LogoutSession is the session surface the logout flow needs.
type LogoutSession interface {
	Clear(ctx context.Context) error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Session LogoutSession
}

// RunLogout drops the token and its durable copy. No request is sent.
func RunLogout(ctx context.Context, deps LogoutDeps) error {
	if deps.Session == nil {
		return errors.New("logout flow has no session")
	}
	return deps.Session.Clear(ctx)
}
