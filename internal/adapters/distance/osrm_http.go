package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// osrmError is a non-"Ok" code reported by the OSRM server itself.
type osrmError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *osrmError) Error() string {
	if e.Message == "" {
		return "osrm: " + e.Code
	}
	return fmt.Sprintf("osrm: %s: %s", e.Code, e.Message)
}

// noRoute reports whether err is OSRM's way of saying the points are not
// connected, which is a result rather than a failure.
func noRoute(err error) bool {
	var oe *osrmError
	if !errors.As(err, &oe) {
		return false
	}
	switch oe.Code {
	case "NoRoute", "NoSegment", "NoTable":
		return true
	}
	return false
}

// asOSRMError lifts a 4xx response carrying an OSRM error body into *osrmError.
func asOSRMError(err error) error {
	var he *httpStatusError
	if !errors.As(err, &he) || he.Code >= 500 {
		return err
	}

	var oe osrmError
	if jsonErr := json.Unmarshal([]byte(he.Body), &oe); jsonErr != nil || oe.Code == "" {
		return err
	}
	return &oe
}

func (o *OSRMProvider) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "osrm-travel-tools")

	return req, nil
}

func (o *OSRMProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
func (o *OSRMProvider) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := o.backoff

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := o.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, asOSRMError(lastErr)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, asOSRMError(lastErr)
}
