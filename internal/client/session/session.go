// Package session enforces single-device login on the client: it keeps the
// device's local session token aligned with the account's authoritative
// marker on the server and forces a logout the moment they diverge.
package session

// Session is the device's view of who is logged in. It is created by the
// login flow and torn down on logout (manual or forced); nothing else may
// mutate it.
//
// UserID is the identity key everywhere. Email is display metadata only.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// State of the guard's per-device state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateActive
	StateInvalidatedPendingAck
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateActive:
		return "active"
	case StateInvalidatedPendingAck:
		return "invalidated_pending_ack"
	default:
		return "unknown"
	}
}

// LogoutReason tells the notice handler why the device was logged out.
type LogoutReason int

const (
	// ReasonRivalLogin: the authoritative marker was overwritten by a login
	// on another device.
	ReasonRivalLogin LogoutReason = iota
	// ReasonLocalTokenLost: the device considers itself authenticated but
	// holds no local token. A local invariant violation, not a remote
	// question.
	ReasonLocalTokenLost
)

func (r LogoutReason) String() string {
	switch r {
	case ReasonRivalLogin:
		return "signed in on another device"
	case ReasonLocalTokenLost:
		return "local session lost"
	default:
		return "unknown"
	}
}
