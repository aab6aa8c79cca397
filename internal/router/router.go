package router

import (
	"net/http"

	"tableside/internal/handler"
	"tableside/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	sessionHandler *handler.SessionHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/menu", catalogHandler.Menu).Methods(http.MethodGet)
	api.HandleFunc("/tables", catalogHandler.Tables).Methods(http.MethodGet)

	api.HandleFunc("/session", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/session", sessionHandler.Update).Methods(http.MethodPut)

	api.HandleFunc("/cart", cartHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/cart", cartHandler.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/cart/lines", cartHandler.AddLine).Methods(http.MethodPost)
	api.HandleFunc("/cart/lines/{id}", cartHandler.UpdateLine).Methods(http.MethodPatch)
	api.HandleFunc("/cart/lines/{id}", cartHandler.RemoveLine).Methods(http.MethodDelete)

	api.HandleFunc("/coupons/validate", checkoutHandler.ValidateCoupon).Methods(http.MethodPost)
	api.HandleFunc("/checkout/summary", checkoutHandler.Summary).Methods(http.MethodGet)
	api.HandleFunc("/checkout", checkoutHandler.Submit).Methods(http.MethodPost)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", "X-Session-ID", "X-Request-ID"},
	})

	// Middleware order: Recovery -> Logging -> CORS -> RequestID -> APIKeyAuth
	var h http.Handler = r
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.RequestID(h)
	h = corsHandler.Handler(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
