package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

// StaticProvider talks to an OSRM-compatible routing server: a single
// /table/v1/driving/{coords} call answers a full sources×destinations
// matrix with no notion of departure time.
type StaticProvider struct {
	client       *retryingClient
	baseURL      string
	maxLocations int
}

// NewStaticProvider builds a StaticProvider against baseURL (e.g.
// "http://localhost:5000"), with maxLocations as the largest single
// /table request the builder may issue before it must chunk.
func NewStaticProvider(baseURL string, maxLocations int, requestTimeout time.Duration, maxRetries int) *StaticProvider {
	if maxLocations <= 0 {
		maxLocations = 100
	}
	return &StaticProvider{
		client:       newRetryingClient(requestTimeout, maxRetries),
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxLocations: maxLocations,
	}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) MaxLocationsPerCall() int { return p.maxLocations }

type osrmTableResponse struct {
	Code      string      `json:"code"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// BuildMatrix requests the full sources×destinations table for req.Locations
// in a single call. The builder is responsible for chunking when
// len(req.Locations) exceeds MaxLocationsPerCall.
func (p *StaticProvider) BuildMatrix(ctx context.Context, req ports.MatrixRequest) (*domain.Matrix, error) {
	if len(req.Locations) > p.maxLocations {
		return nil, domain.ErrRequestTooLarge
	}

	coordsPart := make([]string, len(req.Locations))
	for i, c := range req.Locations {
		coordsPart[i] = fmt.Sprintf("%f,%f", c.Lon, c.Lat)
	}

	endpoint := fmt.Sprintf("%s/table/v1/driving/%s?annotations=distance,duration",
		p.baseURL, strings.Join(coordsPart, ";"))

	resp, err := p.client.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		if isUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("static provider: request failed: %w", err)
	}
	defer resp.Body.Close()

	var table osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("static provider: decode response: %w", err)
	}
	if table.Code != "Ok" {
		return nil, fmt.Errorf("%w: osrm status %q", domain.ErrProviderUnavailable, table.Code)
	}

	n := len(req.Locations)
	if len(table.Distances) != n || len(table.Durations) != n {
		return nil, domain.ErrPartialMatrix
	}

	m := domain.NewMatrix(req.Locations)
	partial := false
	for i := 0; i < n; i++ {
		if len(table.Distances[i]) != n || len(table.Durations[i]) != n {
			partial = true
			continue
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dp := table.Distances[i][j]
			du := table.Durations[i][j]
			if dp == nil || du == nil {
				partial = true
				continue
			}
			m.Set(i, j, int64(*dp+0.5), int64(*du+0.5), false)
		}
	}
	if partial {
		return m, domain.ErrPartialMatrix
	}
	return m, nil
}
