package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

// TimeDependentProvider talks to a Valhalla-compatible routing server: a
// /sources_to_targets POST with an optional date_time answers a
// sources×targets matrix that accounts for time-of-day traffic.
type TimeDependentProvider struct {
	client       *retryingClient
	baseURL      string
	costing      string
	maxLocations int
}

// NewTimeDependentProvider builds a TimeDependentProvider against baseURL
// (e.g. "http://localhost:8002"), using costing (e.g. "auto") as the
// Valhalla profile.
func NewTimeDependentProvider(baseURL, costing string, maxLocations int, requestTimeout time.Duration, maxRetries int) *TimeDependentProvider {
	if maxLocations <= 0 {
		maxLocations = 100
	}
	if costing == "" {
		costing = "auto"
	}
	return &TimeDependentProvider{
		client:       newRetryingClient(requestTimeout, maxRetries),
		baseURL:      strings.TrimRight(baseURL, "/"),
		costing:      costing,
		maxLocations: maxLocations,
	}
}

func (p *TimeDependentProvider) Name() string { return "time_dependent" }

func (p *TimeDependentProvider) MaxLocationsPerCall() int { return p.maxLocations }

type valhallaLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type sourcesToTargetsRequest struct {
	Sources  []valhallaLocation `json:"sources"`
	Targets  []valhallaLocation `json:"targets"`
	Costing  string             `json:"costing"`
	DateTime *valhallaDateTime  `json:"date_time,omitempty"`
}

type valhallaDateTime struct {
	Type  int    `json:"type"`
	Value string `json:"value"`
}

type sourcesToTargetsResponse struct {
	SourcesToTargets [][]struct {
		Distance *float64 `json:"distance"` // kilometers
		Time     *float64 `json:"time"`     // seconds
	} `json:"sources_to_targets"`
}

// BuildMatrix requests the full sources×targets table for req.Locations in
// a single call, honoring req.DepartureSecond when set.
func (p *TimeDependentProvider) BuildMatrix(ctx context.Context, req ports.MatrixRequest) (*domain.Matrix, error) {
	if len(req.Locations) > p.maxLocations {
		return nil, domain.ErrRequestTooLarge
	}

	locs := make([]valhallaLocation, len(req.Locations))
	for i, c := range req.Locations {
		locs[i] = valhallaLocation{Lat: c.Lat, Lon: c.Lon}
	}

	body := sourcesToTargetsRequest{
		Sources: locs,
		Targets: locs,
		Costing: p.costing,
	}
	if req.DepartureSecond >= 0 {
		body.DateTime = &valhallaDateTime{
			Type:  1, // specified local time
			Value: formatHHMM(req.DepartureSecond),
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("time-dependent provider: marshal request: %w", err)
	}

	endpoint := p.baseURL + "/sources_to_targets"
	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		if isUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("time-dependent provider: request failed: %w", err)
	}
	defer resp.Body.Close()

	var table sourcesToTargetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("time-dependent provider: decode response: %w", err)
	}

	n := len(req.Locations)
	if len(table.SourcesToTargets) != n {
		return nil, domain.ErrPartialMatrix
	}

	m := domain.NewMatrix(req.Locations)
	partial := false
	for i := 0; i < n; i++ {
		row := table.SourcesToTargets[i]
		if len(row) != n {
			partial = true
			continue
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			cell := row[j]
			if cell.Distance == nil || cell.Time == nil {
				partial = true
				continue
			}
			m.Set(i, j, int64(*cell.Distance*1000+0.5), int64(*cell.Time+0.5), false)
		}
	}
	if partial {
		return m, domain.ErrPartialMatrix
	}
	return m, nil
}

func formatHHMM(departureSecond int) string {
	h := (departureSecond / 3600) % 24
	m := (departureSecond / 60) % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
