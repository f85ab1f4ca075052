package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/appointment"
	"github.com/darasahq/darasa/core/user"
)

type appointmentApi struct {
	svc      appointment.Service
	validate *validator.Validate
}

func registerAppointmentAPI(e *echo.Echo, auth *auth, svc appointment.Service, validate *validator.Validate) {
	api := appointmentApi{
		svc:      svc,
		validate: validate,
	}

	ag := e.Group("/appointments", auth.middleware(), auth.contextUserMiddleware())
	ag.POST("", api.book, roleMiddleware(user.RoleStudent))
	ag.GET("", api.queryAll, adminMiddleware())
	ag.GET("/my", api.queryOwn)
	ag.PUT("/:id/status", api.updateStatus)
}

// Handlers

func (api *appointmentApi) book(ctx echo.Context) error {
	actor, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data appointment.NewAppointment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAppointment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	appt, err := api.svc.Book(ctx.Request().Context(), actor, data)
	if err != nil {
		return trapSvcErr(err)
	}
	return ctx.JSON(http.StatusCreated, AppointmentResponse{
		Message:     "Appointment booked successfully.",
		Appointment: appt,
	})
}

func (api *appointmentApi) queryOwn(ctx echo.Context) error {
	actor, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	appts, err := api.svc.QueryOwn(ctx.Request().Context(), actor)
	if err != nil {
		return trapSvcErr(err)
	}
	if appts == nil {
		appts = []appointment.Appointment{}
	}
	return ctx.JSON(http.StatusOK, appts)
}

func (api *appointmentApi) queryAll(ctx echo.Context) error {
	appts, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying appointments")
	}
	if appts == nil {
		appts = []appointment.Appointment{}
	}
	return ctx.JSON(http.StatusOK, appts)
}

func (api *appointmentApi) updateStatus(ctx echo.Context) error {
	actor, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data appointment.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	appt, err := api.svc.UpdateStatus(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return trapSvcErr(err)
	}
	return ctx.JSON(http.StatusOK, AppointmentResponse{
		Message:     "Appointment status updated successfully.",
		Appointment: appt,
	})
}

type AppointmentResponse struct {
	Message     string                  `json:"message"`
	Appointment appointment.Appointment `json:"appointment"`
}
