package handlers

import (
	"net/http"

	"bloom-monitor/database"
	"bloom-monitor/utils"

	"github.com/labstack/echo/v4"
)

// ConnectionStatusProvider reports the state of the database link.
type ConnectionStatusProvider interface {
	Status() database.ConnectorStatus
}

// APIHandler serves service-level endpoints.
type APIHandler struct {
	conn ConnectionStatusProvider
}

func NewAPIHandler(conn ConnectionStatusProvider) *APIHandler {
	return &APIHandler{conn: conn}
}

// ===================================================================
// HEALTH CHECK
// ===================================================================

// HealthCheck reports the service and database connection state. It answers
// 503 while the database is not connected.
func (h *APIHandler) HealthCheck(c echo.Context) error {
	status := h.conn.Status()
	data := map[string]interface{}{
		"service":   "bloom-monitor",
		"timestamp": utils.GetUnixTimestamp(),
		"database":  status,
	}
	if status.State != database.StateConnected {
		return c.JSON(http.StatusServiceUnavailable, utils.StandardResponse{
			Status:  "error",
			Message: "Database is not connected",
			Data:    data,
		})
	}
	return c.JSON(http.StatusOK, utils.SuccessResponse("Service is healthy", data))
}
