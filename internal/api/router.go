package api

import (
	"net/http"
	"time"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter assembles the HTTP surface. Routes under authentication require a
// bearer token issued by /api/user/authToken; the partner-facing routes
// (createOrderToUC, updateInventory, cancelOrderByMarketPlace) are open and
// carry their own credential checks.
func NewRouter(h *Handlers, jwtService *auth.JWTService, users middleware.UserResolver, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authRequired := middleware.Auth(jwtService, users)

	r.Route("/api/user", func(r chi.Router) {
		r.Get("/authToken", h.GetAuthToken)
		r.Post("/createUser", h.CreateUser)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Post("/updateInventory", h.UpdateInventory)

		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.Get("/products", h.GetProducts)
			r.Get("/productsCount", h.GetProductsCount)
			r.Post("/createProduct", h.CreateProduct)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/createOrderToUC", h.ForwardOrder)
		r.Post("/cancelOrderByMarketPlace", h.CancelOrderByMarketplace)

		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.Post("/createOrderByUser", h.CreateOrderByUser)
			r.Post("/cancel", h.CancelOrderBySeller)
			r.Post("/dispatch", h.DispatchOrder)
			r.Post("/{orderId}", h.UpdateOrderItemStatus)
		})
	})

	return r
}
