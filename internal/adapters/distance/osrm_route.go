package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/ports"
)

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance *float64 `json:"distance"`
		Duration *float64 `json:"duration"`
	} `json:"routes"`
}

// fetchRoute calls /route/v1 for a single pair. A nil result means OSRM
// reported the pair as unroutable.
func (o *OSRMProvider) fetchRoute(
	ctx context.Context,
	profile string,
	from domain.Coordinates,
	to domain.Coordinates,
) (*ports.DistanceResult, error) {
	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%s;%s",
		o.baseURL, profile, from.OSRMString(), to.OSRMString(),
	)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("overview", "false")
		q.Set("alternatives", "false")
		q.Set("steps", "false")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		if noRoute(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}

	if rr.Code != "Ok" {
		oe := &osrmError{Code: rr.Code, Message: rr.Message}
		if noRoute(oe) {
			return nil, nil
		}
		return nil, oe
	}

	if len(rr.Routes) == 0 {
		return nil, fmt.Errorf("route response has code Ok but no routes")
	}

	best := rr.Routes[0]
	if best.Distance == nil || best.Duration == nil {
		return nil, fmt.Errorf("route response is missing distance or duration")
	}
	if *best.Distance < 0 || *best.Duration < 0 {
		return nil, fmt.Errorf("route response has negative metrics: distance=%v duration=%v", *best.Distance, *best.Duration)
	}

	return &ports.DistanceResult{
		DistanceMeters:  *best.Distance,
		DurationSeconds: *best.Duration,
	}, nil
}
