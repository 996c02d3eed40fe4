package base

import (
	"github.com/labstack/echo/v4"
)

// ===================================================================
// PARAMETER EXTRACTION HELPERS
// ===================================================================

// ExtractStringParam extracts string parameter from URL with validation
func ExtractStringParam(c echo.Context, paramName string, required bool) (string, error) {
	value := c.Param(paramName)
	if required && value == "" {
		return "", BadRequestError("%s parameter is required", paramName)
	}
	return value, nil
}

// ===================================================================
// REQUEST BODY HELPERS
// ===================================================================

// BindAndValidateJSON binds JSON request body and handles errors
func BindAndValidateJSON(c echo.Context, target interface{}) error {
	if err := c.Bind(target); err != nil {
		return HandleBindError(c, err)
	}
	return nil
}

// BindJSONWithValidation binds JSON and runs validate, which reports the
// offending field on failure.
func BindJSONWithValidation(c echo.Context, target interface{}, validate func() (string, error)) error {
	if err := BindAndValidateJSON(c, target); err != nil {
		return err
	}
	if validate != nil {
		if field, err := validate(); err != nil {
			return BadRequestError("Validation failed for field %s: %v", field, err)
		}
	}
	return nil
}
