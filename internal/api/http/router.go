package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouteMounter lets other transports (the websocket hub) hang their
// endpoints off the same router.
type RouteMounter interface {
	RegisterRoutes(r *mux.Router)
}

func NewRouter(handler *Handler, mounts ...RouteMounter) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	for _, mount := range mounts {
		mount.RegisterRoutes(r)
	}
	return cors.Default().Handler(r)
}

func StartServer(addr string, handler http.Handler) {
	log.Printf("QR menu server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
