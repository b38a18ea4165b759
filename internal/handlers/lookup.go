package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkiryanov/ministore/internal/handlers/render"
)

type LookupResponse struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

// Resolves service name to the path its API is served on
func handleLookup(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name != serviceName {
			render.CodedError(w, "unknown_service", "No service registered with name "+name, http.StatusNotFound)
			return
		}

		render.JSON(w, LookupResponse{Name: name, Endpoint: APIEndpoint})
	}
}
