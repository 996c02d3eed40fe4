package base

import (
	"fmt"
	"net/http"

	"bloom-monitor/database"
	"bloom-monitor/repositories/base"
	"bloom-monitor/utils"

	"github.com/labstack/echo/v4"
)

// ===================================================================
// HTTP ERROR HANDLING
// ===================================================================

// HandleRepositoryError converts repository errors to AppErrors with the
// matching HTTP status. Transient database failures answer 503. Unknown
// errors keep their cause for logging only.
func HandleRepositoryError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case base.IsEntityNotFound(err):
		return utils.NewNotFoundError(base.GetErrorMessage(err), err)
	case base.IsValidationError(err):
		return utils.NewBadRequestError(base.GetErrorMessage(err), err)
	case base.IsInvalidTransition(err):
		return utils.NewConflictError(base.GetErrorMessage(err), err)
	case database.IsTransient(err):
		return utils.NewServiceUnavailableError("Database is temporarily unavailable", err)
	default:
		return utils.NewInternalServerError(base.GetErrorMessage(err), err)
	}
}

// BadRequestError creates a 400 Bad Request error
func BadRequestError(message string, args ...interface{}) error {
	return utils.NewBadRequestError(fmt.Sprintf(message, args...))
}

// HandleBindError handles request binding errors
func HandleBindError(c echo.Context, err error) error {
	return utils.NewBadRequestError("Invalid request body", err)
}

// ===================================================================
// RESPONSE HELPERS
// ===================================================================

// SendSuccessJSON sends a success response with JSON data
func SendSuccessJSON(c echo.Context, statusCode int, message string, data interface{}) error {
	return c.JSON(statusCode, utils.SuccessResponse(message, data))
}

// SendCreatedJSON sends a 201 Created response
func SendCreatedJSON(c echo.Context, message string, data interface{}) error {
	return SendSuccessJSON(c, http.StatusCreated, message, data)
}

// SendOKJSON sends a 200 OK response
func SendOKJSON(c echo.Context, message string, data interface{}) error {
	return SendSuccessJSON(c, http.StatusOK, message, data)
}

// SendRepositoryResult handles repository operation results
func SendRepositoryResult(c echo.Context, data interface{}, err error, successMessage string) error {
	if err != nil {
		return HandleRepositoryError(c, err)
	}
	return SendOKJSON(c, successMessage, data)
}

// SendListResult sends items with their count
func SendListResult(c echo.Context, items interface{}, count int, err error, successMessage string) error {
	if err != nil {
		return HandleRepositoryError(c, err)
	}
	return SendOKJSON(c, successMessage, utils.CreateListResponse(items, count))
}
