package utils

import (
	"time"
)

// ===================================================================
// TIME HELPERS
// ===================================================================

// GetUnixTimestamp returns current Unix timestamp
func GetUnixTimestamp() int64 {
	return time.Now().Unix()
}

// ===================================================================
// RESPONSE HELPERS
// ===================================================================

// StandardResponse represents a standard API response
type StandardResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse creates a success response
func SuccessResponse(message string, data interface{}) StandardResponse {
	return StandardResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

// ErrorResponse creates an error response
func ErrorResponse(message string) StandardResponse {
	return StandardResponse{
		Status:  "error",
		Message: message,
	}
}

// ListResponse represents a list response with count
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// CreateListResponse creates a list response
func CreateListResponse(items interface{}, count int) ListResponse {
	return ListResponse{
		Items: items,
		Count: count,
	}
}
