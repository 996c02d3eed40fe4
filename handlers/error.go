package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"bloom-monitor/utils"

	"github.com/labstack/echo/v4"
)

var errorLogger = slog.Default().With("component", "error_handler")

// SetErrorLogger sets the logger for error handling.
func SetErrorLogger(logger *slog.Logger) {
	errorLogger = logger.With("component", "error_handler")
}

// CustomHTTPErrorHandler is the central error handler for the Echo application.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := errorLogger.With("method", c.Request().Method, "path", c.Path())

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		if internalErr := appErr.Unwrap(); internalErr != nil {
			level := slog.LevelInfo
			if appErr.Code >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(c.Request().Context(), level, "Error handled",
				"status_code", appErr.Code,
				"error_message", appErr.Message,
				slog.Any("internal_error", internalErr))
		}
		c.JSON(appErr.Code, utils.ErrorResponse(appErr.Message))
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		c.JSON(httpErr.Code, utils.ErrorResponse(fmt.Sprint(httpErr.Message)))
		return
	}

	logger.Error("Unhandled error occurred",
		"error_type", fmt.Sprintf("%T", err),
		slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, utils.ErrorResponse("An unexpected internal error occurred."))
}
