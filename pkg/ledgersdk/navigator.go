package ledgersdk

import "context"

// LoginRoute is the login entry point the SDK navigates to when a session
// ends.
const LoginRoute = "/login"

// Navigator performs client-side navigation. replace asks the navigator to
// replace the current history entry instead of pushing a new one, so "back"
// does not return to a stale authenticated page.
type Navigator interface {
	Navigate(ctx context.Context, route string, replace bool) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, route string, replace bool) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, route string, replace bool) error {
	return f(ctx, route, replace)
}

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string, bool) error { return nil }
