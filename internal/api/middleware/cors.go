package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS builds the CORS policy for the review API. Origins come from
// config; the API is GET/POST only and the header set covers JSON bodies
// plus the internal API-key header.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-API-Key",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
