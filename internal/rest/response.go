// Package rest carries the response envelope shared by every handler:
// {status: "success"|"failed", data?, msg?}.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Msg    string `json:"msg,omitempty"`
}

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

func write(w http.ResponseWriter, logger *slog.Logger, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// Success writes a success envelope carrying data.
func Success(w http.ResponseWriter, logger *slog.Logger, code int, data any) {
	write(w, logger, code, Envelope{Status: statusSuccess, Data: data})
}

// SuccessMsg writes a success envelope carrying a message and optional data.
func SuccessMsg(w http.ResponseWriter, logger *slog.Logger, code int, msg string, data any) {
	write(w, logger, code, Envelope{Status: statusSuccess, Msg: msg, Data: data})
}

// Fail writes a failed envelope with the given message.
func Fail(w http.ResponseWriter, logger *slog.Logger, code int, msg string) {
	write(w, logger, code, Envelope{Status: statusFailed, Msg: msg})
}

// Internal degrades any storage or encoding failure to a 500 envelope with
// the underlying message interpolated, matching the public error contract.
func Internal(w http.ResponseWriter, logger *slog.Logger, err error) {
	Fail(w, logger, http.StatusInternalServerError, "Error: "+err.Error())
}
