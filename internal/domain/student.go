// Package domain contains core domain types for the Trivial quiz bot.
package domain

// UserID is the stable chat identifier of a participant. It maps 1:1 to a
// student record and never changes once assigned.
type UserID int64

// EnrollmentStatus is the administrative approval state gating whether a
// user may play. It is owned by the persistence layer; the game engine
// only reads it.
type EnrollmentStatus int

const (
	Unregistered EnrollmentStatus = iota
	PendingApproval
	Active
	Suspended
)

// String returns a human-readable status name for logging.
func (s EnrollmentStatus) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case PendingApproval:
		return "pending_approval"
	case Active:
		return "active"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// DisplayMode controls how question options are presented to a student.
type DisplayMode int

const (
	// DisplayExtended shows the prompt and every option in one message.
	DisplayExtended DisplayMode = iota
	// DisplayPaginated shows one option per page with navigation controls.
	DisplayPaginated
)

// Student is a registered participant.
type Student struct {
	ID     int64
	ChatID UserID
	Name   string
	Email  string
}
