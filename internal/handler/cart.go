package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/biztalbox/avaya-food-ordering/internal/cart"
	"github.com/biztalbox/avaya-food-ordering/internal/enum"
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/biztalbox/avaya-food-ordering/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartHandler exposes the session cart. Every successful change is pushed
// to the session's clients as a cart.updated event.
type CartHandler struct {
	sessions SessionStore
	menus    MenuSource
	notifier Notifier
	logger   *zap.Logger
}

func NewCartHandler(sessions SessionStore, menus MenuSource, notifier Notifier, logger *zap.Logger) *CartHandler {
	return &CartHandler{sessions: sessions, menus: menus, notifier: notifier, logger: logger}
}

// RegisterRoutes registers cart endpoints. Mount behind Authenticate.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{itemID}", h.RemoveItem)
	r.Get("/items/{itemID}/quantity", h.Quantity)
	r.Post("/coupon", h.ApplyCoupon)
	r.Delete("/coupon", h.RemoveCoupon)
}

// --- Request / Response types ---

type addItemRequest struct {
	ItemID      string `json:"item_id"`
	VariationID string `json:"variation_id"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type cartLineResponse struct {
	Kind          string `json:"kind"`
	ItemID        string `json:"item_id"`
	Name          string `json:"name"`
	VariationID   string `json:"variation_id,omitempty"`
	VariationName string `json:"variation_name,omitempty"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	LineTotal     string `json:"line_total"`
	IsVeg         bool   `json:"is_veg"`
}

type taxLineResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Percent string `json:"percent"`
	Amount  string `json:"amount"`
}

type discountLineResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Amount string `json:"amount"`
}

type cartResponse struct {
	Lines          []cartLineResponse     `json:"lines"`
	Subtotal       string                 `json:"subtotal"`
	Tax            string                 `json:"tax"`
	Taxes          []taxLineResponse      `json:"taxes"`
	RuleDiscount   string                 `json:"rule_discount"`
	Discounts      []discountLineResponse `json:"discounts"`
	CouponDiscount string                 `json:"coupon_discount"`
	Coupon         string                 `json:"coupon,omitempty"`
	GrandTotal     string                 `json:"grand_total"`
	TotalItems     int                    `json:"total_items"`
}

type couponResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Cart    cartResponse `json:"cart"`
}

func newCartResponse(lines []cart.Line, t cart.Totals) cartResponse {
	resp := cartResponse{
		Lines:          make([]cartLineResponse, 0, len(lines)),
		Subtotal:       t.Subtotal.StringFixed(2),
		Tax:            t.Tax.StringFixed(2),
		Taxes:          make([]taxLineResponse, 0, len(t.TaxLines)),
		RuleDiscount:   t.RuleDiscount.StringFixed(2),
		Discounts:      make([]discountLineResponse, 0, len(t.RuleDiscountLines)),
		CouponDiscount: t.CouponDiscount.StringFixed(2),
		Coupon:         t.Coupon,
		GrandTotal:     t.GrandTotal.StringFixed(2),
		TotalItems:     t.TotalItems,
	}
	for _, l := range lines {
		key := l.Key()
		resp.Lines = append(resp.Lines, cartLineResponse{
			Kind:          l.Kind.String(),
			ItemID:        key.ItemID,
			Name:          l.Item.Name,
			VariationID:   key.VariationID,
			VariationName: l.VariationName(),
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice.StringFixed(2),
			LineTotal:     l.Total().StringFixed(2),
			IsVeg:         l.Item.IsVeg,
		})
	}
	for _, tl := range t.TaxLines {
		resp.Taxes = append(resp.Taxes, taxLineResponse{
			ID:      tl.ID,
			Name:    tl.Name,
			Percent: tl.Percent.String(),
			Amount:  tl.Amount.StringFixed(2),
		})
	}
	for _, dl := range t.RuleDiscountLines {
		resp.Discounts = append(resp.Discounts, discountLineResponse{
			ID:     dl.ID,
			Name:   dl.Name,
			Kind:   dl.Kind.String(),
			Amount: dl.Amount.StringFixed(2),
		})
	}
	return resp
}

// --- Handlers ---

// Get returns the cart with its derived totals.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	lines, totals := s.Cart.Snapshot()
	writeJSON(w, http.StatusOK, newCartResponse(lines, totals))
}

// AddItem adds one unit of a menu item. Items with variations must name
// one of them.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ItemID = strings.TrimSpace(req.ItemID)
	req.VariationID = strings.TrimSpace(req.VariationID)
	if req.ItemID == "" {
		writeError(w, http.StatusUnprocessableEntity, cart.ErrItemIDRequired.Error())
		return
	}

	m, err := h.menus.Menu(r.Context())
	if err != nil {
		h.logger.Error("load menu for cart", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "unable to load menu")
		return
	}
	s.Cart.SetPricing(m.Taxes, m.Discounts)

	item, found := m.Item(req.ItemID)
	if !found {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var variation *menu.Variation
	switch {
	case item.HasVariations() && req.VariationID == "":
		writeError(w, http.StatusUnprocessableEntity, "variation_id is required for this item")
		return
	case !item.HasVariations() && req.VariationID != "":
		writeError(w, http.StatusUnprocessableEntity, "item has no variations")
		return
	case req.VariationID != "":
		v, found := item.Variation(req.VariationID)
		if !found {
			writeError(w, http.StatusNotFound, "variation not found")
			return
		}
		variation = &v
	}

	if err := s.Cart.Add(item, variation); err != nil {
		if errors.Is(err, cart.ErrItemIDRequired) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("add to cart", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondChanged(w, s)
}

// RemoveItem takes one unit of the line off the cart. Unknown lines are a
// no-op.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Cart.Remove(chi.URLParam(r, "itemID"), r.URL.Query().Get("variation_id"))
	h.respondChanged(w, s)
}

// Quantity reports how many units of a line are in the cart.
func (h *CartHandler) Quantity(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	n := s.Cart.Quantity(chi.URLParam(r, "itemID"), r.URL.Query().Get("variation_id"))
	writeJSON(w, http.StatusOK, map[string]int{"quantity": n})
}

// Clear empties the cart and drops any coupon.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Cart.Clear()
	h.respondChanged(w, s)
}

// ApplyCoupon tries a coupon code. A rejected code is not an HTTP error:
// the response carries success=false and the message to show.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := s.Cart.ApplyCoupon(req.Code)
	lines, totals := s.Cart.Snapshot()
	body := newCartResponse(lines, totals)
	if res.Success {
		publish(h.notifier, h.logger, s.ID, enum.EventCartUpdated, body)
	}
	writeJSON(w, http.StatusOK, couponResponse{Success: res.Success, Message: res.Message, Cart: body})
}

// RemoveCoupon drops the applied coupon.
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.sessions)
	if !ok {
		return
	}
	s.Cart.RemoveCoupon()
	h.respondChanged(w, s)
}

func (h *CartHandler) respondChanged(w http.ResponseWriter, s *session.Session) {
	lines, totals := s.Cart.Snapshot()
	body := newCartResponse(lines, totals)
	publish(h.notifier, h.logger, s.ID, enum.EventCartUpdated, body)
	writeJSON(w, http.StatusOK, body)
}
