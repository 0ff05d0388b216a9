package distance

import (
	"context"
	"fmt"
	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/ports"
	"sync"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
	// NoRoute makes the pair report no route instead of a result.
	NoRoute bool
}

// MockDistanceProvider serves fixed results for known pairs and counts calls.
type MockDistanceProvider struct {
	m map[string]*ports.DistanceResult

	mu         sync.Mutex
	RouteCalls int
	TableCalls int
	// Err, when set, is returned by every call.
	Err error
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]*ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		if p.NoRoute {
			m[p.From.Key()+"|"+p.To.Key()] = nil
			continue
		}
		m[p.From.Key()+"|"+p.To.Key()] = &ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) Route(ctx context.Context, profile string, from, to domain.Coordinates) (*ports.DistanceResult, error) {
	p.mu.Lock()
	p.RouteCalls++
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return p.lookup(from, to)
}

func (p *MockDistanceProvider) Table(ctx context.Context, profile string, origins, destinations []domain.Coordinates) ([][]*ports.DistanceResult, error) {
	p.mu.Lock()
	p.TableCalls++
	p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}

	out := make([][]*ports.DistanceResult, len(origins))
	for i, o := range origins {
		out[i] = make([]*ports.DistanceResult, len(destinations))
		for j, d := range destinations {
			r, err := p.lookup(o, d)
			if err != nil {
				return nil, err
			}
			out[i][j] = r
		}
	}
	return out, nil
}

func (p *MockDistanceProvider) lookup(from, to domain.Coordinates) (*ports.DistanceResult, error) {
	r, ok := p.m[from.Key()+"|"+to.Key()]
	if !ok {
		return nil, fmt.Errorf("missing pair %s -> %s", from, to)
	}
	if r == nil {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}
