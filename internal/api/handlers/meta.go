package handlers

import (
	"net/http"

	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/utils/response"
)

type Banner struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		response.WriteJson(w, http.StatusOK, Banner{
			Service: "resilient-catalog-cache",
			Version: "1.0.0",
			Endpoints: []string{
				"GET /products/{id}",
				"GET /products",
				"POST /products",
				"PUT /products/{id}",
				"GET /health",
				"GET /healthz",
				"GET /metrics",
			},
		})

	}
}

func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJson(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
	}
}
