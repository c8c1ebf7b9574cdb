package session

import "context"

// Access classifies a route for the navigation gate.
type Access int

const (
	// AccessPublic routes are always reachable.
	AccessPublic Access = iota
	// AccessProtected routes require an authenticated session.
	AccessProtected
	// AccessGuest routes are only for visitors; authenticated users go to the root.
	AccessGuest
)

// Gate decides whether a navigation may proceed. On the first navigation the
// manager is still loading, so the gate waits for a verification before
// deciding. When the navigation is refused the returned path is where the
// caller should go instead.
func (m *Manager) Gate(ctx context.Context, access Access) (redirect string, ok bool) {
	if m.IsLoading() {
		m.VerifyAuth(ctx)
	}

	authenticated := m.IsAuthenticated()
	switch access {
	case AccessProtected:
		if !authenticated {
			return RouteLogin, false
		}
	case AccessGuest:
		if authenticated {
			return RouteRoot, false
		}
	}
	return "", true
}
