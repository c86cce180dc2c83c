package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jersey-sale/api/internal/service"
	"github.com/jersey-sale/api/internal/ws"
	"go.uber.org/zap"
)

// EventBroadcaster pushes live updates to admin clients. Satisfied by *ws.Hub.
type EventBroadcaster interface {
	Broadcast(event ws.Event)
}

// Middleware wraps a handler, e.g. the admin gate or the rate limiter.
type Middleware = func(http.Handler) http.Handler

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode JSON response", zap.Error(err))
	}
}

// writeServiceError maps service errors to HTTP responses. Storage failures
// are logged with op and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	switch {
	case service.IsValidationError(err):
		resp := errorResponse{Error: err.Error(), Code: service.ErrorCode(err)}
		var fe *service.FieldError
		if errors.As(err, &fe) {
			resp.Error = fe.Err.Error()
			resp.Field = fe.Field
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrImageNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: service.ErrorCode(err)})
	default:
		log.Error(op, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// broadcast sends an event, logging (not failing) when the payload cannot be encoded.
func broadcast(events EventBroadcaster, log *zap.Logger, eventType string, payload interface{}) {
	if events == nil {
		return
	}
	ev, err := ws.NewEvent(eventType, payload)
	if err != nil {
		log.Warn("build ws event", zap.String("type", eventType), zap.Error(err))
		return
	}
	events.Broadcast(ev)
}
