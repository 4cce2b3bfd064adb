package session

import "github.com/safescrow/dashboard/pkg/authapi"

// Status is the coarse session state. Exactly one holds at any time.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot handed to listeners and returned by Manager.State.
// Profile is non-nil only when Status is StatusAuthenticated and must be
// treated as read-only.
type State struct {
	Status      Status
	Profile     *authapi.Profile
	Loading     bool // startup has not finished
	AuthLoading bool // a login or registration is in flight
}
