package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/appointment"
	"github.com/darasahq/darasa/core/user"
)

type appointmentRepository struct {
	db *sqlx.DB
}

var _ appointment.Repository = (*appointmentRepository)(nil) // interface compliance check

func NewAppointmentRepository(db *sqlx.DB) *appointmentRepository {
	return &appointmentRepository{db: db}
}

type refRow struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

func (r refRow) ref() *user.Ref {
	return &user.Ref{ID: r.ID, Name: r.Name, Email: r.Email}
}

type apptRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	TeacherID string    `db:"teacher_id"`
	Date      time.Time `db:"date"`
	TimeSlot  string    `db:"time_slot"`
	Subject   string    `db:"subject"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type apptStudentRow struct {
	apptRow
	Student refRow `db:"student"`
}

type apptTeacherRow struct {
	apptRow
	Teacher refRow `db:"teacher"`
}

type apptFullRow struct {
	apptRow
	Student refRow `db:"student"`
	Teacher refRow `db:"teacher"`
}

func (repo appointmentRepository) row(appt appointment.Appointment) apptRow {
	return apptRow{
		ID:        appt.ID,
		StudentID: appt.StudentID,
		TeacherID: appt.TeacherID,
		Date:      appt.Date.UTC(),
		TimeSlot:  appt.Time,
		Subject:   appt.Subject,
		Status:    appt.Status.String(),
		CreatedAt: appt.CreatedAt.UTC(),
		UpdatedAt: appt.UpdatedAt.UTC(),
	}
}

func (repo appointmentRepository) unrow(row apptRow) appointment.Appointment {
	return appointment.Appointment{
		ID:        row.ID,
		StudentID: row.StudentID,
		TeacherID: row.TeacherID,
		Date:      row.Date,
		Time:      row.TimeSlot,
		Subject:   row.Subject,
		Status:    appointment.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to appointment.ErrNotFound
func (repo appointmentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return appointment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const apptColumns = `a.id, a.student_id, a.teacher_id, a.date, a.time_slot, a.subject, a.status, a.created_at, a.updated_at`

func (repo appointmentRepository) CreateAppointment(ctx context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	appt.ID = uuid.New().String()
	query := `
		INSERT INTO appointments (id, student_id, teacher_id, date, time_slot, subject, status, created_at, updated_at)
		VALUES (:id, :student_id, :teacher_id, :date, :time_slot, :subject, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, repo.row(appt)); err != nil {
		return appointment.Appointment{}, errors.Wrap(err, "inserting appointment")
	}
	return appt, nil
}

func (repo appointmentRepository) QueryAppointmentsByStudent(ctx context.Context, studentID string) ([]appointment.Appointment, error) {
	var rows []apptTeacherRow
	query := `
		SELECT ` + apptColumns + `,
		       t.id AS "teacher.id", t.name AS "teacher.name", t.email AS "teacher.email"
		FROM appointments a
		JOIN users t ON t.id = a.teacher_id
		WHERE a.student_id = $1
		ORDER BY a.date, a.time_slot`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student appointments")
	}

	appts := make([]appointment.Appointment, 0, len(rows))
	for _, row := range rows {
		appt := repo.unrow(row.apptRow)
		appt.Teacher = row.Teacher.ref()
		appts = append(appts, appt)
	}
	return appts, nil
}

func (repo appointmentRepository) QueryAppointmentsByTeacher(ctx context.Context, teacherID string) ([]appointment.Appointment, error) {
	var rows []apptStudentRow
	query := `
		SELECT ` + apptColumns + `,
		       s.id AS "student.id", s.name AS "student.name", s.email AS "student.email"
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		WHERE a.teacher_id = $1
		ORDER BY a.date, a.time_slot`
	if err := repo.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying teacher appointments")
	}

	appts := make([]appointment.Appointment, 0, len(rows))
	for _, row := range rows {
		appt := repo.unrow(row.apptRow)
		appt.Student = row.Student.ref()
		appts = append(appts, appt)
	}
	return appts, nil
}

func (repo appointmentRepository) QueryAllAppointments(ctx context.Context) ([]appointment.Appointment, error) {
	var rows []apptFullRow
	query := `
		SELECT ` + apptColumns + `,
		       s.id AS "student.id", s.name AS "student.name", s.email AS "student.email",
		       t.id AS "teacher.id", t.name AS "teacher.name", t.email AS "teacher.email"
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		JOIN users t ON t.id = a.teacher_id
		ORDER BY a.created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying appointments")
	}

	appts := make([]appointment.Appointment, 0, len(rows))
	for _, row := range rows {
		appt := repo.unrow(row.apptRow)
		appt.Student = row.Student.ref()
		appt.Teacher = row.Teacher.ref()
		appts = append(appts, appt)
	}
	return appts, nil
}

func (repo appointmentRepository) GetAppointmentByID(ctx context.Context, id string) (appointment.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	var row apptRow
	query := `SELECT ` + apptColumns + ` FROM appointments a WHERE a.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return appointment.Appointment{}, repo.trapNoRowsErr(err, "finding appointment by ID")
	}
	return repo.unrow(row), nil
}

func (repo appointmentRepository) UpdateAppointment(ctx context.Context, appt appointment.Appointment) (appointment.Appointment, error) {
	query := `
		UPDATE appointments
		SET date = :date, time_slot = :time_slot, subject = :subject, status = :status, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, repo.row(appt))
	if err != nil {
		return appointment.Appointment{}, errors.Wrap(err, "updating appointment")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return appointment.Appointment{}, appointment.ErrNotFound
	}
	return appt, nil
}
