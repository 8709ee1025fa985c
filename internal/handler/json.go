package handler

import (
	"encoding/json"
	"net/http"

	"github.com/biztalbox/avaya-food-ordering/internal/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier pushes events to the clients of one session.
// Satisfied by *ws.Hub.
type Notifier interface {
	BroadcastToSession(sessionID uuid.UUID, event ws.Event)
	CloseSession(sessionID uuid.UUID)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func publish(n Notifier, logger *zap.Logger, sessionID uuid.UUID, eventType string, payload interface{}) {
	if n == nil {
		return
	}
	event, err := ws.NewEvent(eventType, payload)
	if err != nil {
		logger.Error("build event", zap.String("type", eventType), zap.Error(err))
		return
	}
	n.BroadcastToSession(sessionID, event)
}
