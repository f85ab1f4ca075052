package appointment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var AllStatuses = []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status updates are allowed.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) String() string { return string(s) }

type Appointment struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	TeacherID string    `json:"teacherId"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time"`
	Subject   string    `json:"subject"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC

	// populated from the other party of the appointment when queried
	Student *user.Ref `json:"student,omitempty"`
	Teacher *user.Ref `json:"teacher,omitempty"`
}

const dateLayout = "2006-01-02" // expected wire format for NewAppointment.Date

type NewAppointment struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Time      string `json:"time" validate:"required"`
	Subject   string `json:"subject" validate:"required"`

	date time.Time
}

func (na *NewAppointment) Validate(validate *validator.Validate) error {
	na.TeacherID = core.CleanString(na.TeacherID)
	na.Time = core.CleanString(na.Time)
	na.Subject = core.CleanString(na.Subject)
	if err := validate.Struct(na); err != nil {
		return err
	}
	date, err := time.Parse(dateLayout, core.CleanString(na.Date))
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "date", Error: "date must be in YYYY-MM-DD format"})
	}
	na.date = date
	return nil
}

// ParsedDate is only valid after a successful Validate.
func (na *NewAppointment) ParsedDate() time.Time { return na.date }

type StatusUpdate struct {
	Status Status `json:"status" validate:"required"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.Status = Status(core.CleanString(su.Status.String(), true /* lower */))
	return validate.Struct(su)
}
