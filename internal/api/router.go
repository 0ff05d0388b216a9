package api

import (
	"net/http"
	"osrm-travel-tools/internal/api/handlers"
	"osrm-travel-tools/internal/ports"
	"time"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(provider ports.TravelTimeProvider, profile string, delay time.Duration) http.Handler {
	mux := http.NewServeMux()

	matrixHandler := &handlers.MatrixHandler{Provider: provider, DefaultProfile: profile}
	pairsHandler := &handlers.PairsHandler{Provider: provider, DefaultProfile: profile, Delay: delay}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/matrix", matrixHandler.Matrix)
	mux.HandleFunc("/pairs", pairsHandler.Pairs)

	// requestIDMiddleware runs first so log lines carry the id.
	return requestIDMiddleware(loggingMiddleware(mux))
}
