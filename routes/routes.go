package routes

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"osbootd/handlers"
	"osbootd/internal/middleware"
)

// Setup configures and returns the router with all routes for the
// service. Fixed routes are registered before the distro catch-all, so a
// distro directory cannot shadow them.
func Setup(container *handlers.Container) *mux.Router {
	router := mux.NewRouter()

	// mux's default path cleaning answers dot-segment requests with a 301
	// to the collapsed path. Traversal attempts must instead reach the
	// resolver and be rejected with 400.
	router.SkipClean(true)

	router.Use(
		middleware.AccessLog(container.Logger),
		middleware.Metrics,
		middleware.SecurityHeaders,
	)

	distroHandlers := handlers.NewDistroHandlers(container)
	artifactHandlers := handlers.NewArtifactHandlers(container)
	ipxeHandlers := handlers.NewIPXEHandlers(container)
	statusHandlers := handlers.NewStatusHandlers(container)

	router.HandleFunc("/", distroHandlers.ListDistros).Methods("GET").Name("Index")
	router.HandleFunc("/distros", distroHandlers.ListDistros).Methods("GET").Name("ListDistros")
	router.HandleFunc("/distros/{name}", distroHandlers.GetDistro).Methods("GET").Name("GetDistro")
	router.HandleFunc("/healthz", statusHandlers.Healthz).Methods("GET").Name("Healthz")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET").Name("Metrics")

	router.HandleFunc("/{distro}/boot.ipxe", ipxeHandlers.BootScript).Methods("GET", "HEAD").Name("BootScript")
	router.HandleFunc("/{distro}/", ipxeHandlers.BootScript).Methods("GET", "HEAD").Name("BootScriptRoot")
	router.HandleFunc("/{distro}/{path:.*}", artifactHandlers.ServeArtifact).Methods("GET", "HEAD").Name("ServeArtifact")

	return router
}
