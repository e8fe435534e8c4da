package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/estoquelabs/estoque-backend/api/controllers"
	webhookcontrollers "github.com/estoquelabs/estoque-backend/api/controllers/webhooks"
	"github.com/estoquelabs/estoque-backend/api/middleware"
	alert "github.com/estoquelabs/estoque-backend/internal/alerts"
	authsvc "github.com/estoquelabs/estoque-backend/internal/auth"
	product "github.com/estoquelabs/estoque-backend/internal/products"
	warehouse "github.com/estoquelabs/estoque-backend/internal/warehouses"
	"github.com/estoquelabs/estoque-backend/pkg/config"
	"github.com/estoquelabs/estoque-backend/pkg/db"
	"github.com/estoquelabs/estoque-backend/pkg/db/models"
	"github.com/estoquelabs/estoque-backend/pkg/logger"
	pkgredis "github.com/estoquelabs/estoque-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisPinger pkgredis.Pinger,
	authService authsvc.Service,
	productService product.Service,
	warehouseService warehouse.Service,
	alertService alert.Service,
	orderProcessor webhookcontrollers.OrderProcessor,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbPinger, redisPinger, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Marketplace push notifications. Unauthenticated: the marketplace only
	// understands status codes.
	r.Post("/webhook", webhookcontrollers.MercadoLivreWebhook(orderProcessor, logg))

	if !cfg.App.IsProd() {
		r.Get("/mock/orders/{orderID}", controllers.MockOrder())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(authService, logg))
		r.Post("/register", controllers.Register(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		adminOnly := middleware.RequireRole(models.UserRoleAdmin, logg)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Get("/{productID}", controllers.GetProduct(productService, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(productService, logg))
			r.With(adminOnly).Delete("/{productID}", controllers.DeleteProduct(productService, logg))
			r.Post("/{productID}/inventory", controllers.SetProductInventory(productService, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.ListWarehouses(warehouseService, logg))
			r.Post("/", controllers.CreateWarehouse(warehouseService, logg))
			r.Get("/{warehouseID}", controllers.GetWarehouse(warehouseService, logg))
			r.Patch("/{warehouseID}", controllers.UpdateWarehouse(warehouseService, logg))
			r.With(adminOnly).Delete("/{warehouseID}", controllers.DeleteWarehouse(warehouseService, logg))
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", controllers.ListAlerts(alertService, logg))
			r.Post("/{alertID}/resolve", controllers.ResolveAlert(alertService, logg))
		})
	})

	return r
}
