// Package httpx provides the JSON envelope shared by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/shared"
)

// Envelope is the success body of every endpoint.
type Envelope struct {
	Success        bool               `json:"success"`
	Found          *bool              `json:"found,omitempty"`
	Data           any                `json:"data"`
	Pagination     *shared.Pagination `json:"pagination,omitempty"`
	FiltersApplied any                `json:"filters_applied,omitempty"`
	Message        string             `json:"message,omitempty"`
}

// ErrorBody is the failure body of every endpoint.
type ErrorBody struct {
	Error      string  `json:"error"`
	Suggestion string  `json:"suggestion,omitempty"`
	Matches    []Match `json:"matches,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(headerAllowOrigin, allowOrigin)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success sends a success envelope.
func Success(w http.ResponseWriter, status int, env Envelope) {
	env.Success = true
	JSON(w, status, env)
}
