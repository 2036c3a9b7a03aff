package router

import (
	"net/http"
	"strings"

	"atelier-store/internal/handler"
	"atelier-store/internal/middleware"
	"atelier-store/internal/repository"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
// Admin routes additionally sit behind the admin auth middleware.
func New(
	orderHandler *handler.OrderHandler,
	inventoryHandler *handler.InventoryHandler,
	adminHandler *handler.AdminHandler,
	users repository.UserRepository,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Order handler function
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		// Route based on method and path
		if r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/" {
			switch r.Method {
			case http.MethodPost:
				orderHandler.Create(w, r)
			case http.MethodGet:
				orderHandler.List(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// Check if this is a request for a specific order number
		if strings.HasPrefix(r.URL.Path, "/api/orders/") {
			orderHandler.GetByOrderNumber(w, r)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}

	// Register order routes (both with and without trailing slash)
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Inventory routes
	mux.HandleFunc("/api/inventory/", inventoryHandler.Handle)

	// Admin routes behind the admin auth middleware
	adminAuth := middleware.AdminAuth(users, logger)
	mux.Handle("/api/admin/users/", adminAuth(http.HandlerFunc(adminHandler.Users)))
	mux.Handle("/api/admin/orders/", adminAuth(http.HandlerFunc(adminHandler.Orders)))
	mux.Handle("/api/admin/products/", adminAuth(http.HandlerFunc(adminHandler.Products)))
	mux.Handle("/api/admin/audit-logs", adminAuth(http.HandlerFunc(adminHandler.AuditLogs)))

	// Apply middleware chain
	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Recovery(logger)(h)

	return h
}
