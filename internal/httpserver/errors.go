package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/media"
	"github.com/omart/marketplace/internal/service"
)

// ErrorHandler renders every error as JSON. Unexpected errors become a generic 500;
// their text is only exposed in development.
func ErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			body := echo.Map{"message": "Something went wrong!", "error": "Internal server error"}
			if dev {
				body["error"] = err.Error()
			}
			writeError(c, http.StatusInternalServerError, body)
			return
		}

		code := he.Code
		if code == http.StatusNotFound && errors.Is(err, echo.ErrNotFound) {
			writeError(c, code, echo.Map{"message": "Route not found"})
			return
		}

		switch m := he.Message.(type) {
		case echo.Map:
			writeError(c, code, m)
		case string:
			writeError(c, code, echo.Map{"message": m})
		case error:
			writeError(c, code, echo.Map{"message": m.Error()})
		default:
			writeError(c, code, echo.Map{"message": http.StatusText(code)})
		}
	}
}

func writeError(c echo.Context, code int, body echo.Map) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Echo().Logger.Error(err)
	}
}

func validationError(err error) *echo.HTTPError {
	var ve *service.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message": ve.Fields[0].Message,
			"errors":  ve.Fields,
		})
	}
	return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductSold):
		return "Cannot update sold product"
	case errors.Is(err, domain.ErrReasonRequired):
		return "Rejection reason is required"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Product cannot change status from its current state"
	case errors.Is(err, media.ErrNoFiles):
		return "At least one image is required"
	case errors.Is(err, media.ErrTooManyFiles):
		return "Too many files. Maximum 5 files allowed."
	case errors.Is(err, media.ErrInvalidFile):
		return mediaFileMessage(err)
	}
	return "Invalid request"
}

func mediaFileMessage(err error) string {
	if errors.Is(err, media.ErrTooLarge) {
		return "File too large. Maximum size is 5MB."
	}
	return "Only image files are allowed."
}

// serviceError maps the service error taxonomy onto HTTP and logs the outcome.
func serviceError(l *slog.Logger, event string, err error, notFoundMsg, forbiddenMsg string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid request", "error", err)
		return validationError(err)
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", notFoundMsg, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", forbiddenMsg, "error", err)
		return echo.NewHTTPError(http.StatusForbidden, forbiddenMsg)
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, "User already exists with this email")
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, unauthorizedMessage(err))
	case errors.Is(err, service.ErrUnavailable):
		l.Warn(event, "status", 503, "reason", "dependency not configured", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Service temporarily unavailable")
	case errors.Is(err, media.ErrUpload), errors.Is(err, media.ErrNotConfigured):
		l.Error(event, "status", 500, "reason", "image upload failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, media.UserMessage(err))
	}
	l.Error(event, "status", 500, "reason", "unexpected error", "error", err)
	return err
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrAccountDisabled):
		return "Account is deactivated"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	}
	return "Not authorized"
}
