package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORS allows any origin to read the API. Only safe methods are exposed
// because no route accepts writes.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			chimiddleware.RequestIDHeader,
			"traceparent",
		},
		ExposedHeaders: []string{"Link", "Location", chimiddleware.RequestIDHeader},
		MaxAge:         300,
	})
}
