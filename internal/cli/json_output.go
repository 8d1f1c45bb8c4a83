// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting shopdesk commands.
package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every --json command writes.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w, indented.
// Human-readable messages should go to stderr when JSON mode is enabled.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// StatusData is returned by the status command.
type StatusData struct {
	LoggedIn      bool    `json:"logged_in"`
	UserID        int64   `json:"user_id,omitempty"`
	Email         string  `json:"email,omitempty"`
	LastActivity  string  `json:"last_activity,omitempty"`
	IdleSeconds   float64 `json:"idle_seconds"`
	RemainingSecs float64 `json:"remaining_seconds"`
	TimeoutSecs   int     `json:"timeout_seconds"`
	JustLoggedOut bool    `json:"just_logged_out"`
	RememberMe    bool    `json:"remember_me"`
	APIURL        string  `json:"api_url"`
	ConfigPath    string  `json:"config_path,omitempty"`
}

// ConfigData is returned by config show.
type ConfigData struct {
	Path   string         `json:"path"`
	Values map[string]any `json:"values"`
}

// LoginData is returned by the login command.
type LoginData struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Remember bool   `json:"remember"`
}
