package appointment

import (
	"testing"

	"github.com/darasahq/darasa/core/user"
)

func TestDecideStatusUpdate(t *testing.T) {
	student := user.User{ID: "stu-1", Role: user.RoleStudent}
	otherStudent := user.User{ID: "stu-2", Role: user.RoleStudent}
	teacher := user.User{ID: "tea-1", Role: user.RoleTeacher}
	otherTeacher := user.User{ID: "tea-2", Role: user.RoleTeacher}
	admin := user.User{ID: "adm-1", Role: user.RoleAdmin}

	appt := func(status Status) Appointment {
		return Appointment{ID: "appt-1", StudentID: student.ID, TeacherID: teacher.ID, Status: status}
	}

	tests := []struct {
		name    string
		actor   user.User
		appt    Appointment
		next    Status
		wantErr error
	}{
		{name: "unknown status", actor: admin, appt: appt(StatusPending), next: Status("paused"), wantErr: ErrInvalidStatus},

		// terminal states are frozen for everyone
		{name: "completed is frozen for admin", actor: admin, appt: appt(StatusCompleted), next: StatusCancelled, wantErr: ErrTerminalStatus},
		{name: "cancelled is frozen for admin", actor: admin, appt: appt(StatusCancelled), next: StatusConfirmed, wantErr: ErrTerminalStatus},
		{name: "completed is frozen for teacher", actor: teacher, appt: appt(StatusCompleted), next: StatusCancelled, wantErr: ErrTerminalStatus},
		{name: "cancelled is frozen for student", actor: student, appt: appt(StatusCancelled), next: StatusPending, wantErr: ErrTerminalStatus},

		// admin can drive any non-terminal appointment
		{name: "admin confirms", actor: admin, appt: appt(StatusPending), next: StatusConfirmed},
		{name: "admin cancels confirmed", actor: admin, appt: appt(StatusConfirmed), next: StatusCancelled},
		{name: "admin completes", actor: admin, appt: appt(StatusConfirmed), next: StatusCompleted},

		// students may only cancel their own pending appointment
		{name: "student cancels pending", actor: student, appt: appt(StatusPending), next: StatusCancelled},
		{name: "student confirms", actor: student, appt: appt(StatusPending), next: StatusConfirmed, wantErr: ErrStudentTransition},
		{name: "student cancels confirmed", actor: student, appt: appt(StatusConfirmed), next: StatusCancelled, wantErr: ErrStudentTransition},
		{name: "other student cancels", actor: otherStudent, appt: appt(StatusPending), next: StatusCancelled, wantErr: ErrNotAllowed},

		// teachers drive their own appointments
		{name: "teacher confirms", actor: teacher, appt: appt(StatusPending), next: StatusConfirmed},
		{name: "teacher cancels", actor: teacher, appt: appt(StatusConfirmed), next: StatusCancelled},
		{name: "teacher completes", actor: teacher, appt: appt(StatusConfirmed), next: StatusCompleted},
		{name: "teacher resets to pending", actor: teacher, appt: appt(StatusConfirmed), next: StatusPending, wantErr: ErrInvalidStatus},
		{name: "other teacher confirms", actor: otherTeacher, appt: appt(StatusPending), next: StatusConfirmed, wantErr: ErrNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := decideStatusUpdate(tt.actor, tt.appt, tt.next); err != tt.wantErr {
				t.Errorf("decideStatusUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
