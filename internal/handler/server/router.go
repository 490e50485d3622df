package server

import (
	"net/http"

	"github.com/bagdasarian/review-submit/internal/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(mux *http.ServeMux, h *handler.Handler) {
	mux.HandleFunc("GET /changes/{id}/submitted_together", h.SubmittedTogether)
	mux.HandleFunc("POST /changes/{id}/submit", h.Submit)
	mux.HandleFunc("GET /changes/{id}/submit_action", h.GetSubmitAction)
	mux.HandleFunc("PUT /changes/{id}/topic", h.SetTopic)
	mux.Handle("GET /metrics", promhttp.Handler())
}
