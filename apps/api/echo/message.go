package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/message"
)

type messageApi struct {
	svc      message.Service
	validate *validator.Validate
}

func registerMessageAPI(e *echo.Echo, auth *auth, svc message.Service, validate *validator.Validate) {
	api := messageApi{
		svc:      svc,
		validate: validate,
	}

	mg := e.Group("/messages", auth.middleware(), auth.contextUserMiddleware())
	mg.POST("", api.send)
	mg.GET("/my", api.queryOwn)
	mg.PUT("/:id/read", api.markRead)
}

// Handlers

func (api *messageApi) send(ctx echo.Context) error {
	actor, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data message.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.svc.Send(ctx.Request().Context(), actor, data)
	if err != nil {
		return trapSvcErr(err)
	}
	return ctx.JSON(http.StatusCreated, SentMessageResponse{
		Message:     "Message sent successfully.",
		SentMessage: msg,
	})
}

func (api *messageApi) queryOwn(ctx echo.Context) error {
	actor, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	msgs, err := api.svc.QueryOwn(ctx.Request().Context(), actor)
	if err != nil {
		return trapSvcErr(err)
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) markRead(ctx echo.Context) error {
	actor, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	msg, err := api.svc.MarkRead(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return trapSvcErr(err)
	}
	return ctx.JSON(http.StatusOK, UpdatedMessageResponse{
		Message:        "Message marked as read.",
		UpdatedMessage: msg,
	})
}

type (
	SentMessageResponse struct {
		Message     string          `json:"message"`
		SentMessage message.Message `json:"sentMessage"`
	}

	UpdatedMessageResponse struct {
		Message        string          `json:"message"`
		UpdatedMessage message.Message `json:"updatedMessage"`
	}
)
