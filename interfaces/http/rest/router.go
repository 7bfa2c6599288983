package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"listingsvc/application/caching"
	"listingsvc/application/listings"
	"listingsvc/infrastructure/config"
	"listingsvc/interfaces/http/rest/handlers"
	"listingsvc/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg           *config.Config
	dataCache     *caching.DataCache
	invalidator   *caching.Invalidator
	collector     *caching.Collector
	service       *listings.Service
	responseCache *middleware.ResponseCache
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	dataCache *caching.DataCache,
	invalidator *caching.Invalidator,
	collector *caching.Collector,
	service *listings.Service,
	responseCache *middleware.ResponseCache,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		dataCache:     dataCache,
		invalidator:   invalidator,
		collector:     collector,
		service:       service,
		responseCache: responseCache,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Response-Cache"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	authenticate := middleware.Authenticate(rt.cfg, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		listingHandler := handlers.NewListingHandler(rt.dataCache, rt.service, rt.logger)
		cacheHandler := handlers.NewCacheHandler(rt.collector, rt.invalidator, rt.dataCache, rt.service, rt.logger)

		r.Route("/listings", func(r chi.Router) {
			// Dual-layer read: response cache in front of the data cache.
			r.With(rt.responseCache.Handler).Get("/", listingHandler.ListListings)

			// Data-cache-only read, reflects invalidation immediately.
			r.Get("/raw", listingHandler.ListListingsRaw)

			// Mutations are never response-cached.
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", listingHandler.CreateListing)
				r.Put("/{listingID}", listingHandler.UpdateListing)
				r.Delete("/{listingID}", listingHandler.DeleteListing)
			})
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", cacheHandler.Stats)
			r.With(authenticate).Post("/invalidate", cacheHandler.Invalidate)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
