package response

import (
	"encoding/json"
	"net/http"

	"counsellor-console/errors"
	"counsellor-console/logger"
)

// StandardResponse represents the standard API response structure
type StandardResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// SuccessResponse sends a success response with given status code, message, and data
func SuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	response := StandardResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	SendJSON(w, statusCode, response)
}

// ErrorResponse sends an error response with given status code and error message
func ErrorResponse(w http.ResponseWriter, statusCode int, errorMsg string) {
	response := StandardResponse{
		Status: "error",
		Error:  errorMsg,
	}
	SendJSON(w, statusCode, response)
}

// Error maps err onto its HTTP status. data, when non-nil, carries a partial
// result alongside the error (e.g. the outcomes of a partially failed batch).
func Error(w http.ResponseWriter, err error, data interface{}) {
	kind := errors.KindOf(err)
	status := errors.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	response := StandardResponse{
		Status: "error",
		Error:  err.Error(),
		Kind:   kind.String(),
		Data:   data,
	}
	if kind == errors.PartialFailure {
		response.Status = "partial"
	}
	SendJSON(w, status, response)
}

// SendJSON encodes and sends a JSON response
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
