package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/tts-relay/domain"
)

// ErrorHandler renders errors that escape a handler, including recovered panics,
// as a JSON message. Server errors never expose their cause to the caller.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			logger.Warn("Error after response was committed", zap.Error(err))
			return
		}

		code := http.StatusInternalServerError
		message := domain.MessageInternalError

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
			code = httpErr.Code
			message = http.StatusText(code)
			if code == http.StatusMethodNotAllowed {
				message = domain.MessageMethodNotAllowed
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("Internal server error",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, MessageResponse{Message: message})
		}
		if err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}
