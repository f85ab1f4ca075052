package appointment

import (
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("appointment not found")
	ErrNotAllowed        = errors.New("you are not allowed to update this appointment")
	ErrTerminalStatus    = errors.New("appointment is in a terminal state and can no longer be updated")
	ErrInvalidStatus     = errors.New("invalid appointment status")
	ErrAdminOwnListing   = errors.New("admins do not have appointments of their own")
	ErrStudentTransition = errors.New("students may only cancel a pending appointment")
)

// decideStatusUpdate is the single authorization and transition check for
// appointment status changes. Every transport path goes through it.
//
// Terminal states win over everything, including admin privileges: once an
// appointment is completed or cancelled its status is frozen.
func decideStatusUpdate(actor user.User, appt Appointment, next Status) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if appt.Status.Terminal() {
		return ErrTerminalStatus
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsStudent() {
		if appt.StudentID != actor.ID {
			return ErrNotAllowed
		}
		if appt.Status == StatusPending && next == StatusCancelled {
			return nil
		}
		return ErrStudentTransition
	}
	if actor.IsTeacher() {
		if appt.TeacherID != actor.ID {
			return ErrNotAllowed
		}
		// a teacher may confirm, cancel or complete their own appointment,
		// but never move it back to pending
		if next == StatusPending {
			return ErrInvalidStatus
		}
		return nil
	}
	return ErrNotAllowed
}
