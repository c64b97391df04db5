package state

// State identifies where an admin is in the reply flow.
type State string

const (
	// StateIdle indicates the admin's messages are not redirected.
	StateIdle State = "idle"
	// StateAwaitingReply indicates the admin's next message goes to Session.Target.
	StateAwaitingReply State = "awaiting_reply"
)

// Session is the reply state of one admin.
type Session struct {
	State  State
	Target int64
}

// Manager stores admin sessions. Implementations must be safe for concurrent use.
type Manager interface {
	// Get returns the session for adminID, idle when none exists.
	Get(adminID int64) Session
	// Await puts adminID into reply mode for target, replacing any previous
	// target, and returns the replaced session.
	Await(adminID, target int64) Session
	// Clear drops the session and reports whether one was active.
	Clear(adminID int64) bool
	// ClearIf drops the session only while it still points at target.
	ClearIf(adminID, target int64) bool
	// InProgress reports whether adminID is awaiting a reply.
	InProgress(adminID int64) bool
}
