package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		QueryUsersByRole(ctx context.Context, role Role) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUserByID(ctx context.Context, id string) error
	}

	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		AdminCreate(ctx context.Context, nu AdminNewUser) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		QueryTeachers(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetTeacherByID(ctx context.Context, id string) (User, error)
		UpdateTeacherProfile(ctx context.Context, usr User, up UpdateTeacherProfile) (User, error)
		AdminUpdate(ctx context.Context, id string, uu AdminUpdateUser) (User, error)
		Delete(ctx context.Context, id string) error
		SetLastLogin(ctx context.Context, usr User) (User, error)
		CheckUniqueness(email string, excludedUsers ...User) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(email string, excludedUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excludedUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return err
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := New(nu.Name, nu.Email, nu.Role)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) AdminCreate(ctx context.Context, nu AdminNewUser) (User, error) {
	usr := New(nu.Name, nu.Email, nu.Role)
	if usr.IsTeacher() && nu.TeacherProfile != nil {
		usr.TeacherProfile = nu.TeacherProfile
	}
	if usr.IsStudent() && nu.AdminApproved != nil {
		usr.AdminApproved = *nu.AdminApproved
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) QueryTeachers(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsersByRole(ctx, RoleTeacher)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// GetTeacherByID treats a user that exists but is not a teacher the same as
// an absent one.
func (svc *service) GetTeacherByID(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !usr.IsTeacher() {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *service) UpdateTeacherProfile(ctx context.Context, usr User, up UpdateTeacherProfile) (User, error) {
	if usr.TeacherProfile == nil {
		usr.TeacherProfile = emptyTeacherProfile()
	}
	if up.Subjects != nil {
		usr.TeacherProfile.Subjects = up.Subjects
	}
	if up.Availability != nil {
		usr.TeacherProfile.Availability = up.Availability
	}
	if up.Department != nil {
		usr.TeacherProfile.Department = *up.Department
	}
	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Email != "" {
		usr.Email = up.Email
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) AdminUpdate(ctx context.Context, id string, uu AdminUpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if uu.Name != "" {
		usr.Name = uu.Name
	}
	if uu.Email != "" {
		usr.Email = uu.Email
	}
	if uu.Role != "" {
		usr.ApplyRoleChange(uu.Role)
	}
	if uu.TeacherProfile != nil && usr.IsTeacher() {
		usr.TeacherProfile = uu.TeacherProfile
	}

	var newlyApproved bool
	if uu.AdminApproved != nil && usr.IsStudent() {
		newlyApproved = *uu.AdminApproved && !usr.AdminApproved
		usr.AdminApproved = *uu.AdminApproved
	}

	usr.UpdatedAt = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	if newlyApproved {
		svc.sendAccountApprovedMail(usr)
	}
	return usr, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUserByID(ctx, id)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err = verifyToken(usr, rp.Token, svc.conf.SecretKey, svc.conf.Server.PasswordResetTimeoutDelta); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// Mails

func (svc *service) sendWelcomeMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct {
			Name            string
			Role            string
			PendingApproval bool
		}{usr.Name, usr.Role.String(), usr.IsStudent() && !usr.AdminApproved},
	})
}

func (svc *service) sendAccountApprovedMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your account has been approved",
		TemplateName: "account-approved",
		TemplateData: struct{ Name string }{usr.Name},
	})
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr, svc.conf.SecretKey)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name    string
			UID     string
			Token   string
			Timeout string
		}{usr.Name, EncodeUID(usr), token, svc.conf.Server.PasswordResetTimeoutDelta.String()},
	})
}
