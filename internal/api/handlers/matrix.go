package handlers

import (
	"errors"
	"net/http"
	"osrm-travel-tools/internal/api/dto"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
	"osrm-travel-tools/internal/services"

	"go.uber.org/zap"
)

// maxPlaces caps each side of a matrix request.
const maxPlaces = 100

type MatrixHandler struct {
	Provider       ports.TravelTimeProvider
	DefaultProfile string
}

func (h *MatrixHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.MatrixRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Origins) == 0 || len(req.Destinations) == 0 {
		writeError(w, r, http.StatusBadRequest, "origins and destinations are required")
		return
	}
	if len(req.Origins) > maxPlaces || len(req.Destinations) > maxPlaces {
		writeError(w, r, http.StatusBadRequest, "at most 100 origins and 100 destinations")
		return
	}

	profile := req.Profile
	if profile == "" {
		profile = h.DefaultProfile
	}
	if err := domain.ValidateProfile(profile); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m, err := services.TableMatrix(r.Context(), h.Provider, toPlaces(req.Origins), toPlaces(req.Destinations), profile)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinates) || errors.Is(err, domain.ErrInvalidProfile) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		obs.L().Error("table matrix failed", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "routing server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.MatrixResponse{
		Profile:          profile,
		Origins:          m.Origins,
		Destinations:     m.Destinations,
		DurationsMinutes: m.Durations,
		DistancesKm:      m.Distances,
	})
}

func toPlaces(in []dto.PlaceRequest) []domain.Place {
	out := make([]domain.Place, len(in))
	for i, p := range in {
		out[i] = domain.Place{Name: p.Name, Coordinates: domain.Coordinates{Lat: p.Lat, Lon: p.Lon}}
	}
	return out
}
