package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core/appointment"
	"github.com/darasahq/darasa/core/user"
)

type appointmentRepository struct {
	db    *appointmentTable
	users *userTable
}

var _ appointment.Repository = (*appointmentRepository)(nil) // interface compliance check

func NewAppointmentRepository(db *DB) *appointmentRepository {
	return &appointmentRepository{db: db.appointment, users: db.user}
}

func (repo *appointmentRepository) query() []appointment.Appointment {
	appts := make([]appointment.Appointment, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		appts = append(appts, *a)
	}
	return appts
}

func (repo *appointmentRepository) userRef(id string) *user.Ref {
	repo.users.mutex.RLock()
	defer repo.users.mutex.RUnlock()

	if usr, ok := repo.users.table[id]; ok {
		return usr.Ref()
	}
	return nil
}

func sortByDate(appts []appointment.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].Date.Equal(appts[j].Date) {
			return appts[i].Time < appts[j].Time
		}
		return appts[i].Date.Before(appts[j].Date)
	})
}

func (repo *appointmentRepository) CreateAppointment(ctx context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	appt.ID = uuid.New().String()
	repo.db.table[appt.ID] = &appt
	return appt, nil
}

func (repo *appointmentRepository) QueryAppointmentsByStudent(ctx context.Context, studentID string) ([]appointment.Appointment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	appts := make([]appointment.Appointment, 0)
	for _, appt := range repo.query() {
		if appt.StudentID == studentID {
			appt.Teacher = repo.userRef(appt.TeacherID)
			appts = append(appts, appt)
		}
	}
	sortByDate(appts)
	return appts, nil
}

func (repo *appointmentRepository) QueryAppointmentsByTeacher(ctx context.Context, teacherID string) ([]appointment.Appointment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	appts := make([]appointment.Appointment, 0)
	for _, appt := range repo.query() {
		if appt.TeacherID == teacherID {
			appt.Student = repo.userRef(appt.StudentID)
			appts = append(appts, appt)
		}
	}
	sortByDate(appts)
	return appts, nil
}

func (repo *appointmentRepository) QueryAllAppointments(ctx context.Context) ([]appointment.Appointment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	appts := repo.query()
	for i := range appts {
		appts[i].Student = repo.userRef(appts[i].StudentID)
		appts[i].Teacher = repo.userRef(appts[i].TeacherID)
	}
	sort.Slice(appts, func(i, j int) bool { return appts[i].CreatedAt.After(appts[j].CreatedAt) })
	return appts, nil
}

func (repo *appointmentRepository) GetAppointmentByID(ctx context.Context, id string) (appointment.Appointment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if appt, ok := repo.db.table[id]; ok {
		return *appt, nil
	}
	return appointment.Appointment{}, appointment.ErrNotFound
}

func (repo *appointmentRepository) UpdateAppointment(ctx context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[appt.ID]; !ok {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	repo.db.table[appt.ID] = &appt
	return appt, nil
}
