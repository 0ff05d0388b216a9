package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/platform/obs"
	"osrm-travel-tools/internal/ports"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
	Distances [][]*float64 `json:"distances"`
}

// fetchTable retrieves duration and distance for every origin x destination
// using the OSRM table service. Origins come first in the coordinate list,
// destinations after them.
func (o *OSRMProvider) fetchTable(
	ctx context.Context,
	profile string,
	origins []domain.Coordinates,
	destinations []domain.Coordinates,
) ([][]*ports.DistanceResult, error) {
	coords := make([]string, 0, len(origins)+len(destinations))
	sources := make([]string, 0, len(origins))
	dests := make([]string, 0, len(destinations))

	for i, c := range origins {
		coords = append(coords, c.OSRMString())
		sources = append(sources, strconv.Itoa(i))
	}
	for j, c := range destinations {
		coords = append(coords, c.OSRMString())
		dests = append(dests, strconv.Itoa(len(origins)+j))
	}

	endpoint := fmt.Sprintf("%s/table/v1/%s/%s", o.baseURL, profile, strings.Join(coords, ";"))

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("sources", strings.Join(sources, ";"))
		q.Set("destinations", strings.Join(dests, ";"))
		q.Set("annotations", "duration,distance")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		if noRoute(err) {
			return unroutableRows(len(origins), len(destinations), err), nil
		}
		return nil, fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode table response: %w", err)
	}

	if tr.Code != "Ok" {
		oe := &osrmError{Code: tr.Code, Message: tr.Message}
		if noRoute(oe) {
			return unroutableRows(len(origins), len(destinations), oe), nil
		}
		return nil, oe
	}

	if len(tr.Durations) != len(origins) || len(tr.Distances) != len(origins) {
		return nil, fmt.Errorf(
			"expected %d source rows; got durations=%d distances=%d",
			len(origins), len(tr.Durations), len(tr.Distances),
		)
	}

	out := make([][]*ports.DistanceResult, len(origins))
	for i := range origins {
		rowDurations := tr.Durations[i]
		rowDistances := tr.Distances[i]

		if len(rowDurations) != len(destinations) || len(rowDistances) != len(destinations) {
			return nil, fmt.Errorf(
				"row %d lengths do not match destinations: durations=%d distances=%d destinations=%d",
				i, len(rowDurations), len(rowDistances), len(destinations),
			)
		}

		out[i] = make([]*ports.DistanceResult, len(destinations))
		for j := range destinations {
			secondsPtr := rowDurations[j]
			metersPtr := rowDistances[j]

			// OSRM reports unreachable pairs as null.
			if secondsPtr == nil || metersPtr == nil {
				continue
			}
			if *secondsPtr < 0 || *metersPtr < 0 {
				return nil, fmt.Errorf("table returned negative metrics at [%d][%d]", i, j)
			}

			out[i][j] = &ports.DistanceResult{
				DistanceMeters:  *metersPtr,
				DurationSeconds: *secondsPtr,
			}
		}
	}

	return out, nil
}

// unroutableRows is the result for a request OSRM rejected as a whole with a
// no-route code: every cell of the chunk is null.
func unroutableRows(origins, destinations int, cause error) [][]*ports.DistanceResult {
	obs.L().Warn("table chunk has no route", zap.Int("origins", origins), zap.Error(cause))

	out := make([][]*ports.DistanceResult, origins)
	for i := range out {
		out[i] = make([]*ports.DistanceResult, destinations)
	}
	return out
}
