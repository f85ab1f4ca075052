package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/darasahq/darasa/core"
)

// Role is the closed set of account roles. Anything else is invalid by
// construction; there is no free-form role string anywhere downstream.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Slot is a single availability window in a teacher's week.
type Slot struct {
	Day  string `json:"day" validate:"required"`
	Time string `json:"time" validate:"required"`
}

// TeacherProfile exists if and only if the owning user's role is teacher.
type TeacherProfile struct {
	Subjects     []string `json:"subjects"`
	Availability []Slot   `json:"availability" validate:"omitempty,dive"`
	Department   string   `json:"department"`
}

func emptyTeacherProfile() *TeacherProfile {
	return &TeacherProfile{Subjects: []string{}, Availability: []Slot{}}
}

type User struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Role           Role            `json:"role"`
	TeacherProfile *TeacherProfile `json:"teacherProfile,omitempty"`
	AdminApproved  bool            `json:"isAdminApproved"`
	PasswordHash   []byte          `json:"-"`
	CreatedAt      time.Time       `json:"createdAt"` // UTC
	UpdatedAt      time.Time       `json:"updatedAt"` // UTC
	LastLogin      time.Time       `json:"lastLogin"` // UTC
}

// New builds a User with the per-role invariants applied: teachers get a
// fresh empty profile, students start unapproved, everyone else approved.
func New(name, email string, role Role) User {
	now := time.Now().UTC()
	usr := User{
		Name:          name,
		Email:         email,
		Role:          role,
		AdminApproved: role != RoleStudent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if role == RoleTeacher {
		usr.TeacherProfile = emptyTeacherProfile()
	}
	return usr
}

// ApplyRoleChange switches the user's role, keeping the teacher-profile
// invariant: present iff the resulting role is teacher. A promotion gets a
// fresh empty profile; a demotion drops the old one.
func (u *User) ApplyRoleChange(role Role) {
	if u.Role == role {
		return
	}
	u.Role = role
	if role == RoleTeacher {
		if u.TeacherProfile == nil {
			u.TeacherProfile = emptyTeacherProfile()
		}
	} else {
		u.TeacherProfile = nil
	}
	if role != RoleStudent {
		u.AdminApproved = true
	}
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }

// Ref is the populated counterpart subset exposed on appointments and
// messages: name and email only, no credentials, no profile.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Ref() *Ref {
	return &Ref{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// AdminNewUser is NewUser plus the fields only an admin may seed.
type AdminNewUser struct {
	NewUser
	TeacherProfile *TeacherProfile `json:"teacherProfile" validate:"omitempty"`
	AdminApproved  *bool           `json:"isAdminApproved"`
}

func (nu *AdminNewUser) Validate(validate *validator.Validate, svc Service) error {
	return nu.NewUser.Validate(validate, svc)
}

// UpdateTeacherProfile defines what a teacher may change on their own record.
// Zero values leave the original field untouched.
type UpdateTeacherProfile struct {
	Subjects     []string `json:"subjects"`
	Availability []Slot   `json:"availability" validate:"omitempty,dive"`
	Department   *string  `json:"department"`
	Name         string   `json:"name"`
	Email        string   `json:"email" validate:"omitempty,email"`
}

func (up *UpdateTeacherProfile) Validate(validate *validator.Validate, origUsr User, svc Service) error {
	up.Name = core.CleanString(up.Name)
	up.Email = core.CleanString(up.Email, true /* lower */)

	if err := validate.Struct(up); err != nil {
		return err
	}
	if up.Email != "" && up.Email != origUsr.Email {
		return svc.CheckUniqueness(up.Email, origUsr)
	}
	return nil
}

// AdminUpdateUser defines what an admin may change on any user record.
type AdminUpdateUser struct {
	Name           string          `json:"name"`
	Email          string          `json:"email" validate:"omitempty,email"`
	Role           Role            `json:"role" validate:"omitempty,role"`
	AdminApproved  *bool           `json:"isAdminApproved"`
	TeacherProfile *TeacherProfile `json:"teacherProfile" validate:"omitempty"`
}

func (uu *AdminUpdateUser) Validate(validate *validator.Validate, origUsr User, svc Service) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Email != "" && uu.Email != origUsr.Email {
		return svc.CheckUniqueness(uu.Email, origUsr)
	}
	return nil
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }
