package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/service"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func validationError(ctx echo.Context, err error) error {
	res := httpdto.ErrorResponse{Error: "validation failed"}

	var errs validation.Errors
	if errors.As(err, &errs) {
		res.Fields = make(map[string]string, len(errs))
		for field, fieldErr := range errs {
			res.Fields[field] = fieldErr.Error()
		}
	} else {
		res.Error = err.Error()
	}

	return ctx.JSON(http.StatusBadRequest, res)
}

// serviceError writes the status matching a service sentinel. Unknown errors
// are logged and reported as a generic 500.
func serviceError(ctx echo.Context, err error, fields logrus.Fields) error {
	status, message := statusFor(err)
	entry := logrus.WithFields(fields).WithError(err)
	if status == http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}
	return ctx.JSON(status, httpdto.ErrorResponse{Error: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict, service.ErrDuplicateEmail.Error()
	case errors.Is(err, service.ErrDuplicatePhone):
		return http.StatusConflict, service.ErrDuplicatePhone.Error()
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrActivationCodeMismatch):
		return http.StatusBadRequest, service.ErrActivationCodeMismatch.Error()
	case errors.Is(err, service.ErrInvalidActivationTicket):
		return http.StatusBadRequest, service.ErrInvalidActivationTicket.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, service.ErrUnauthenticated.Error()
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, service.ErrUserNotFound.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
