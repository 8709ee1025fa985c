package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/biztalbox/avaya-food-ordering/internal/checkout"
	"github.com/biztalbox/avaya-food-ordering/internal/enum"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutHandler places the session's order with the vendor.
type CheckoutHandler struct {
	sessions SessionStore
	notifier Notifier
	logger   *zap.Logger
}

func NewCheckoutHandler(sessions SessionStore, notifier Notifier, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, notifier: notifier, logger: logger}
}

// RegisterRoutes registers checkout endpoints. Mount behind Authenticate.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/", h.Submit)
}

// --- Response types ---

type checkoutResponse struct {
	Status checkout.Status `json:"status"`
	Cart   cartResponse    `json:"cart"`
}

type fieldErrorResponse struct {
	Error  string               `json:"error"`
	Fields checkout.FieldErrors `json:"fields"`
}

type orderPlacedResponse struct {
	OrderID string          `json:"order_id"`
	Total   string          `json:"total"`
	Status  checkout.Status `json:"status"`
}

// --- Handlers ---

// Get returns the checkout state alongside the cart it would submit.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	lines, totals := s.Cart.Snapshot()
	writeJSON(w, http.StatusOK, checkoutResponse{
		Status: s.Checkout.Status(),
		Cart:   newCartResponse(lines, totals),
	})
}

// Submit validates the contact form and sends the order. One submission
// per session may be in flight.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := s.Checkout.Submit(r.Context(), form)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse{Error: "invalid checkout details", Fields: verr.Fields})
		case errors.Is(err, checkout.ErrSubmissionInProgress):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, checkout.ErrSubmission):
			writeError(w, http.StatusBadGateway, "failed to place order, please try again")
		default:
			h.logger.Error("submit checkout", zap.String("session_id", s.ID.String()), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	resp := orderPlacedResponse{
		OrderID: receipt.OrderID,
		Total:   receipt.Total.StringFixed(2),
		Status:  s.Checkout.Status(),
	}
	publish(h.notifier, h.logger, s.ID, enum.EventOrderSubmitted, resp)
	lines, totals := s.Cart.Snapshot()
	publish(h.notifier, h.logger, s.ID, enum.EventCartUpdated, newCartResponse(lines, totals))

	writeJSON(w, http.StatusCreated, resp)
}
