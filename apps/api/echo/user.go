package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

type userApi struct {
	svc        user.Service
	auth       *auth
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserAPI(e *echo.Echo, auth *auth, svc user.Service, validate *validator.Validate, translator ut.Translator) {
	api := userApi{
		svc:        svc,
		auth:       auth,
		validate:   validate,
		translator: translator,
	}

	ug := e.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)
	ug.GET("/teacher", api.queryTeachers)
	ug.GET("/teacher/:id", api.retrieveTeacher)

	// authed endpoints
	ag := ug.Group("", auth.middleware(), auth.contextUserMiddleware())
	ag.GET("/me", api.me)
	ag.PUT("/teacher/profile", api.updateTeacherProfile, roleMiddleware(user.RoleTeacher))

	// admin endpoints
	adg := ag.Group("/admin", adminMiddleware())
	adg.POST("/user", api.adminCreate)
	adg.PUT("/user/:id", api.adminUpdate)
	adg.DELETE("/user/:id", api.adminDestroy)
	adg.GET("/all", api.queryAll)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return trapSvcErr(err)
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return trapSvcErr(errors.Wrap(err, "registering user"))
	}
	token, err := api.auth.generateToken(usr)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, AuthResponse{User: usr, Token: token})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.auth.authenticate(ctx, data.Email, data.Password)
	if err != nil {
		return err
	}
	token, err := api.auth.generateToken(usr)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, AuthResponse{User: usr, Token: token})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{
		Message: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound:
			return core.NewValidationError(errors.New("invalid password reset link"))
		default:
			return trapSvcErr(errors.Wrap(err, "resetting password"))
		}
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset with the new password."})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.svc.QueryTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []user.User{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *userApi) retrieveTeacher(ctx echo.Context) error {
	usr, err := api.svc.GetTeacherByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return trapSvcErr(err)
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateTeacherProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateTeacherProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacherProfile")
	}
	if err := data.Validate(api.validate, usr, api.svc); err != nil {
		return trapSvcErr(err)
	}

	usr, err = api.svc.UpdateTeacherProfile(ctx.Request().Context(), usr, data)
	if err != nil {
		return trapSvcErr(errors.Wrap(err, "updating teacher profile"))
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) adminCreate(ctx echo.Context) error {
	var data user.AdminNewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminNewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return trapSvcErr(err)
	}

	usr, err := api.svc.AdminCreate(ctx.Request().Context(), data)
	if err != nil {
		return trapSvcErr(errors.Wrap(err, "creating user"))
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) adminUpdate(ctx echo.Context) error {
	origUsr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return trapSvcErr(err)
	}

	var data user.AdminUpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminUpdateUser")
	}
	if err := data.Validate(api.validate, origUsr, api.svc); err != nil {
		return trapSvcErr(err)
	}

	usr, err := api.svc.AdminUpdate(ctx.Request().Context(), origUsr.ID, data)
	if err != nil {
		return trapSvcErr(errors.Wrap(err, "updating user"))
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) adminDestroy(ctx echo.Context) error {
	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if ctx.Param("id") == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return trapSvcErr(errors.Wrap(err, "deleting user"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully."})
}

func (api *userApi) queryAll(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	AuthResponse struct {
		user.User
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
