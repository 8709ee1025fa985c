package router

import (
	"net/http"

	"github.com/biztalbox/avaya-food-ordering/internal/config"
	"github.com/biztalbox/avaya-food-ordering/internal/handler"
	"github.com/biztalbox/avaya-food-ordering/internal/logging"
	mw "github.com/biztalbox/avaya-food-ordering/internal/middleware"
	"github.com/biztalbox/avaya-food-ordering/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// New creates a Chi router with all storefront routes wired up.
// Session-scoped routes require a session token.
func New(cfg *config.Config, menus handler.MenuSource, sessions handler.SessionStore, hub *ws.Hub, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	menuHandler := handler.NewMenuHandler(menus, logger)
	r.Route("/menu", menuHandler.RegisterRoutes)
	r.With(mw.RequireLocation(cfg.TableLocation), mw.RequireTable).Get("/{location}/menu", menuHandler.Get)

	qrHandler := handler.NewQRHandler(cfg.PublicBaseURL, cfg.TableLocation, logger)
	qrHandler.RegisterRoutes(r)

	sessionHandler := handler.NewSessionHandler(sessions, menus, hub, cfg.SessionSecret, cfg.TableLocation, logger)
	sessionHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/sessions/{sid}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.SessionSecret, w, r)
	})

	// Session-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.SessionSecret))

		sessionHandler.RegisterCurrentRoutes(r)

		cartHandler := handler.NewCartHandler(sessions, menus, hub, logger)
		r.Route("/cart", cartHandler.RegisterRoutes)

		checkoutHandler := handler.NewCheckoutHandler(sessions, hub, logger)
		r.Route("/checkout", checkoutHandler.RegisterRoutes)
	})

	logger.Debug("router initialized")
	return r
}
