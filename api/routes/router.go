package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itbpos/restaurant-backend/api/controllers"
	"github.com/itbpos/restaurant-backend/api/middleware"
	internalauth "github.com/itbpos/restaurant-backend/internal/auth"
	"github.com/itbpos/restaurant-backend/internal/exports"
	"github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/internal/printing"
	"github.com/itbpos/restaurant-backend/internal/tables"
	"github.com/itbpos/restaurant-backend/internal/variants"
	"github.com/itbpos/restaurant-backend/pkg/auth/session"
	"github.com/itbpos/restaurant-backend/pkg/config"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	pkgredis "github.com/itbpos/restaurant-backend/pkg/redis"
)

type pinger interface {
	Ping(context.Context) error
}

// Deps bundles everything the HTTP surface needs. Grouping them beats a
// twelve-argument constructor.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    *pkgredis.Client
	Sessions session.AccessSessionChecker

	Auth     internalauth.Service
	Orders   orders.Service
	Kitchen  kitchen.Service
	Tables   tables.Service
	Variants variants.Service
	Printing printing.Service
	Exports  exports.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/sign-in", controllers.AuthSignIn(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/sign-out", controllers.AuthSignOut(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/tables", func(r chi.Router) {
			r.Get("/{tableId}", controllers.TablesGet(deps.Tables, logg))
		})
		r.Get("/branches/{branchId}/tables/available", controllers.TablesAvailable(deps.Tables, logg))

		r.Route("/items/{itemCode}", func(r chi.Router) {
			r.Get("/attributes", controllers.ItemsAttributes(deps.Variants, logg))
			r.Post("/resolve-variant", controllers.ItemsResolveVariant(deps.Variants, logg))
			r.Get("/price", controllers.ItemsPrice(deps.Variants, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Post("/", controllers.OrdersCreate(deps.Orders, logg))
			r.Get("/export", controllers.OrdersExport(deps.Exports, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrdersGet(deps.Orders, logg))
				r.Post("/lines", controllers.OrdersAddLines(deps.Orders, logg))
				r.Patch("/lines/{lineId}", controllers.OrdersUpdateLine(deps.Orders, logg))
				r.Post("/lines/{lineId}/cancel", controllers.OrdersCancelLine(deps.Orders, logg))
				r.Post("/dispatch", controllers.KitchenDispatch(deps.Kitchen, logg))
				r.Post("/mark-served", controllers.OrdersMarkServed(deps.Orders, logg))
				r.Post("/status", controllers.OrdersSetStatus(deps.Orders, logg))
			})
		})

		r.Route("/kitchen", func(r chi.Router) {
			r.Get("/display", controllers.KitchenDisplay(deps.Kitchen, logg))
			r.Route("/kots/{kotId}", func(r chi.Router) {
				r.Get("/", controllers.KitchenGetTicket(deps.Kitchen, logg))
				r.Post("/cancel", controllers.KitchenCancelTicket(deps.Kitchen, logg))
				r.Post("/items/{itemId}/status", controllers.KitchenUpdateItemStatus(deps.Kitchen, logg))
			})
		})

		r.Route("/print", func(r chi.Router) {
			r.Get("/kot/{kotId}", controllers.PrintKOT(deps.Printing, logg))
			r.Get("/receipt/{orderId}", controllers.PrintReceipt(deps.Printing, logg))
		})

		r.Get("/snapshots/{view}", controllers.Snapshot(deps.Redis, logg))
	})

	if cfg.Exports.Dir != "" {
		fileServer := http.StripPrefix(cfg.Exports.BaseURL, http.FileServer(http.Dir(cfg.Exports.Dir)))
		r.Get(cfg.Exports.BaseURL+"/*", func(w http.ResponseWriter, req *http.Request) {
			fileServer.ServeHTTP(w, req)
		})
	}

	return r
}
