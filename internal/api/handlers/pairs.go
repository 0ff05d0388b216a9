package handlers

import (
	"errors"
	"net/http"
	"osrm-travel-tools/internal/api/dto"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
	"osrm-travel-tools/internal/services"
	"osrm-travel-tools/internal/tabular"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const maxPairs = 50

var pairColumns = services.ColumnBindings{OriginLat: "o_lat", OriginLon: "o_lon", DestLat: "d_lat", DestLon: "d_lon"}

type PairsHandler struct {
	Provider       ports.TravelTimeProvider
	DefaultProfile string
	Delay          time.Duration
}

// Pairs computes one route per OD pair, throttled by Delay.
func (h *PairsHandler) Pairs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PairsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Pairs) == 0 {
		writeError(w, r, http.StatusBadRequest, "pairs are required")
		return
	}
	if len(req.Pairs) > maxPairs {
		writeError(w, r, http.StatusBadRequest, "at most 50 pairs")
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

	tbl, err := pairsTable(req.Pairs)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	calc := services.NewTravelTimeCalculator(profile, h.Provider)
	res, err := calc.CalculateTravelMatrix(r.Context(), tbl, pairColumns, h.Delay)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinates) || errors.Is(err, domain.ErrInvalidProfile) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		obs.L().Error("pairwise travel times failed", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "routing server error")
		return
	}

	out := dto.PairsResponse{Profile: profile, Results: make([]dto.PairResultResponse, 0, len(req.Pairs))}
	for i, p := range req.Pairs {
		out.Results = append(out.Results, dto.PairResultResponse{
			Origin:            p.Origin.Name,
			Dest:              p.Destination.Name,
			TravelTimeMinutes: res.Results[i].DurationMinutes,
			DistanceKm:        res.Results[i].DistanceKm,
		})
	}

	writeJSON(w, r, http.StatusOK, out)
}

func pairsTable(pairs []dto.PairRequest) (*tabular.Table, error) {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{
			p.Origin.Name, ftoa(p.Origin.Lat), ftoa(p.Origin.Lon),
			p.Destination.Name, ftoa(p.Destination.Lat), ftoa(p.Destination.Lon),
		}
	}
	return tabular.New([]string{"origin", "o_lat", "o_lon", "dest", "d_lat", "d_lon"}, rows)
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
