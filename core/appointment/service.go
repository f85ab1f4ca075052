package appointment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/user"
)

type (
	Repository interface {
		CreateAppointment(ctx context.Context, appt Appointment) (Appointment, error)
		// QueryAppointmentsByStudent returns the student's appointments with
		// the Teacher ref populated, ordered by date then time.
		QueryAppointmentsByStudent(ctx context.Context, studentID string) ([]Appointment, error)
		// QueryAppointmentsByTeacher returns the teacher's appointments with
		// the Student ref populated, ordered by date then time.
		QueryAppointmentsByTeacher(ctx context.Context, teacherID string) ([]Appointment, error)
		// QueryAllAppointments returns every appointment with both refs
		// populated, newest first.
		QueryAllAppointments(ctx context.Context) ([]Appointment, error)
		GetAppointmentByID(ctx context.Context, id string) (Appointment, error)
		UpdateAppointment(ctx context.Context, appt Appointment) (Appointment, error)
	}

	Service interface {
		Book(ctx context.Context, actor user.User, na NewAppointment) (Appointment, error)
		QueryOwn(ctx context.Context, actor user.User) ([]Appointment, error)
		QueryAll(ctx context.Context) ([]Appointment, error)
		UpdateStatus(ctx context.Context, actor user.User, id string, su StatusUpdate) (Appointment, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{
		repo:   repo,
		usrSvc: usrSvc,
	}
}

// Book creates a pending appointment between the acting student and an
// existing teacher. The status cannot be chosen by the caller.
func (svc *service) Book(ctx context.Context, actor user.User, na NewAppointment) (Appointment, error) {
	teacher, err := svc.usrSvc.GetTeacherByID(ctx, na.TeacherID)
	if err != nil {
		return Appointment{}, err
	}

	now := time.Now().UTC()
	appt := Appointment{
		StudentID: actor.ID,
		TeacherID: teacher.ID,
		Date:      na.ParsedDate(),
		Time:      na.Time,
		Subject:   na.Subject,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateAppointment(ctx, appt)
}

func (svc *service) QueryOwn(ctx context.Context, actor user.User) ([]Appointment, error) {
	switch {
	case actor.IsStudent():
		return svc.repo.QueryAppointmentsByStudent(ctx, actor.ID)
	case actor.IsTeacher():
		return svc.repo.QueryAppointmentsByTeacher(ctx, actor.ID)
	}
	return nil, ErrAdminOwnListing
}

func (svc *service) QueryAll(ctx context.Context) ([]Appointment, error) {
	return svc.repo.QueryAllAppointments(ctx)
}

func (svc *service) UpdateStatus(ctx context.Context, actor user.User, id string, su StatusUpdate) (Appointment, error) {
	appt, err := svc.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if err = decideStatusUpdate(actor, appt, su.Status); err != nil {
		return Appointment{}, err
	}
	appt.Status = su.Status
	appt.UpdatedAt = time.Now().UTC()
	appt, err = svc.repo.UpdateAppointment(ctx, appt)
	if err != nil {
		return Appointment{}, errors.Wrap(err, "updating appointment")
	}
	return appt, nil
}
