package utils

import (
	"encoding/json"
	"net/http"
)

// ApiResponse is the envelope every management endpoint returns.
type ApiResponse struct {
	Status  string `json:"status"` // success | fail
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// DecodeRequestBody decodes a JSON request body into v. Unknown fields
// are a client error, not silently dropped.
func DecodeRequestBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func WriteJson(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func RespondSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	respond(w, statusCode, "success", message, data)
}

func RespondFail(w http.ResponseWriter, statusCode int, message string, data any) {
	respond(w, statusCode, "fail", message, data)
}

func respond(w http.ResponseWriter, statusCode int, status string, message string, data any) {
	WriteJson(w, statusCode, ApiResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})
}
