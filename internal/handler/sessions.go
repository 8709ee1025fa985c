package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/auth"
	"github.com/biztalbox/avaya-food-ordering/internal/checkout"
	"github.com/biztalbox/avaya-food-ordering/internal/enum"
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	mw "github.com/biztalbox/avaya-food-ordering/internal/middleware"
	"github.com/biztalbox/avaya-food-ordering/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore defines the session methods needed by the handlers.
// Satisfied by *session.Registry.
type SessionStore interface {
	Create(tableNumber, location string, taxes []menu.TaxRule, discounts []menu.DiscountRule) *session.Session
	Get(id uuid.UUID) (*session.Session, error)
	Delete(id uuid.UUID) bool
}

// SessionHandler opens and ends ordering sessions.
type SessionHandler struct {
	sessions SessionStore
	menus    MenuSource
	notifier Notifier
	secret   string
	location string
	logger   *zap.Logger
}

// NewSessionHandler creates a SessionHandler. location is the one
// table-gated storefront path besides the root.
func NewSessionHandler(sessions SessionStore, menus MenuSource, notifier Notifier, secret, location string, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		menus:    menus,
		notifier: notifier,
		secret:   secret,
		location: location,
		logger:   logger,
	}
}

// RegisterRoutes registers the public session endpoint.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.Create)
}

// RegisterCurrentRoutes registers endpoints for the caller's own session.
// Mount behind Authenticate.
func (h *SessionHandler) RegisterCurrentRoutes(r chi.Router) {
	r.Get("/sessions/current", h.Current)
	r.Delete("/sessions/current", h.End)
}

// --- Request / Response types ---

type createSessionRequest struct {
	TableNo  string `json:"table_no"`
	Location string `json:"location"`
}

type createSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	TableNo   string    `json:"table_no,omitempty"`
	Location  string    `json:"location,omitempty"`
}

type sessionResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	TableNo   string          `json:"table_no,omitempty"`
	Location  string          `json:"location,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Checkout  checkout.Status `json:"checkout"`
	Cart      cartResponse    `json:"cart"`
}

// --- Handlers ---

// Create starts a session with an empty cart. A location other than the
// root requires a table number.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	table := strings.TrimSpace(req.TableNo)
	location := strings.TrimSpace(req.Location)
	if location != "" {
		if !strings.EqualFold(location, h.location) {
			writeError(w, http.StatusNotFound, "unknown location")
			return
		}
		if table == "" {
			writeError(w, http.StatusPreconditionRequired, "table number required")
			return
		}
		location = h.location
	}

	m, err := h.menus.Menu(r.Context())
	if err != nil {
		h.logger.Error("load menu for new session", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "unable to load menu")
		return
	}

	s := h.sessions.Create(table, location, m.Taxes, m.Discounts)
	id := s.ID
	s.Checkout.OnChange(func(st checkout.Status) {
		publish(h.notifier, h.logger, id, enum.EventCheckoutState, st)
	})

	token, err := auth.GenerateToken(h.secret, s.ID, table, location, auth.DefaultTTL)
	if err != nil {
		h.sessions.Delete(s.ID)
		h.logger.Error("sign session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: s.ID,
		Token:     token,
		TableNo:   table,
		Location:  location,
	})
}

// Current describes the caller's session.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	lines, totals := s.Cart.Snapshot()
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: s.ID,
		TableNo:   s.TableNumber,
		Location:  s.Location,
		CreatedAt: s.CreatedAt,
		Checkout:  s.Checkout.Status(),
		Cart:      newCartResponse(lines, totals),
	})
}

// End discards the caller's session and disconnects its push clients.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	claims := mw.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.sessions.Delete(claims.SessionID) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if h.notifier != nil {
		h.notifier.CloseSession(claims.SessionID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// currentSession resolves the session named by the request's token. It
// writes the error response itself and reports false when there is none.
func currentSession(w http.ResponseWriter, r *http.Request, sessions SessionStore) (*session.Session, bool) {
	claims := mw.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	s, err := sessions.Get(claims.SessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}
