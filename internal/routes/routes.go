package routes

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikhil/tsview/internal/handlers"
	"github.com/nikhil/tsview/internal/logger"
	"github.com/nikhil/tsview/internal/middleware"
)

// Deps carries the shared state the route handlers are built around.
type Deps struct {
	Cache handlers.StatusProvider
	Hub   *handlers.Hub
	Log   *logger.Logger
}

// List of all route registration functions
var routeModules = []func(*mux.Router, Deps){
	registerStatusRoutes,
	registerWebSocketRoutes,
	registerMetricsRoutes,
}

// RegisterAllRoutes builds the router with the full middleware chain and
// every route module mounted.
func RegisterAllRoutes(deps Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recover(deps.Log))
	router.Use(middleware.RequestLogger(deps.Log))

	for _, register := range routeModules {
		register(router, deps)
	}

	return router
}

func registerStatusRoutes(router *mux.Router, deps Deps) {
	statusHandler := handlers.NewStatusHandler(deps.Cache)
	router.HandleFunc("/", statusHandler.GetStatus).Methods("GET")
	router.HandleFunc("/healthz", statusHandler.GetHealth).Methods("GET")
}

func registerWebSocketRoutes(router *mux.Router, deps Deps) {
	wsHandler := handlers.NewWebSocketHandler(deps.Hub)
	router.HandleFunc("/ws", wsHandler.HandleWebSocket).Methods("GET")
}

func registerMetricsRoutes(router *mux.Router, deps Deps) {
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
