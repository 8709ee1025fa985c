package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	mw "github.com/biztalbox/avaya-food-ordering/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MenuSource returns the current normalized menu. Satisfied by *menu.Service.
type MenuSource interface {
	Menu(ctx context.Context) (*menu.Menu, error)
}

// MenuHandler serves the catalog.
type MenuHandler struct {
	menus  MenuSource
	logger *zap.Logger
}

func NewMenuHandler(menus MenuSource, logger *zap.Logger) *MenuHandler {
	return &MenuHandler{menus: menus, logger: logger}
}

// RegisterRoutes registers the menu endpoint on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// --- Response types ---

type restaurantResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

type variationResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type itemResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Price        string              `json:"price"`
	Image        string              `json:"image"`
	Description  string              `json:"description"`
	IsVeg        bool                `json:"is_veg"`
	TaxInclusive bool                `json:"tax_inclusive"`
	Variations   []variationResponse `json:"variations"`
}

type categoryResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Tagline    string         `json:"tagline"`
	HeroImage  string         `json:"hero_image"`
	Layout     string         `json:"layout"`
	Background string         `json:"background"`
	Items      []itemResponse `json:"items"`
}

type menuResponse struct {
	Restaurant restaurantResponse `json:"restaurant"`
	TableNo    string             `json:"table_no,omitempty"`
	Categories []categoryResponse `json:"categories"`
}

// --- Handlers ---

// Get returns the menu, optionally narrowed by ?search= and ?veg=.
// Behind RequireTable the gated table number is echoed back.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.menus.Menu(r.Context())
	if err != nil {
		h.logger.Error("load menu", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "unable to load menu")
		return
	}

	q := r.URL.Query()
	veg, _ := strconv.ParseBool(strings.TrimSpace(q.Get("veg")))
	categories := menu.Search(m, menu.Filter{Query: q.Get("search"), VegOnly: veg})

	resp := menuResponse{
		Restaurant: restaurantResponse{
			ID:      m.Restaurant.ID,
			Name:    m.Restaurant.Name,
			Address: m.Restaurant.Address,
			Contact: m.Restaurant.Contact,
		},
		TableNo:    mw.TableFromContext(r.Context()),
		Categories: make([]categoryResponse, 0, len(categories)),
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toCategoryResponse(c menu.Category) categoryResponse {
	out := categoryResponse{
		ID:         c.ID,
		Name:       c.Name,
		Tagline:    c.Tagline,
		HeroImage:  c.HeroImage,
		Layout:     c.Layout,
		Background: c.Background,
		Items:      make([]itemResponse, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		item := itemResponse{
			ID:           it.ID,
			Name:         it.Name,
			Price:        it.Price.StringFixed(2),
			Image:        it.Image,
			Description:  it.Description,
			IsVeg:        it.IsVeg,
			TaxInclusive: it.TaxInclusive,
			Variations:   make([]variationResponse, 0, len(it.Variations)),
		}
		for _, v := range it.Variations {
			item.Variations = append(item.Variations, variationResponse{ID: v.ID, Name: v.Name, Price: v.Price.StringFixed(2)})
		}
		out.Items = append(out.Items, item)
	}
	return out
}
