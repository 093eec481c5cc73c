// Package geo places customers on the map.
package geo

import (
	"context"
	"math/rand"
	"sync"

	"github.com/evcrm/charger-crm/internal/domain"
)

// Geocoder resolves an address to a map location
type Geocoder interface {
	Locate(ctx context.Context, address string) (domain.Location, error)
}

// ScatterGeocoder does not resolve addresses. It scatters points uniformly
// within spread/2 of a centre so new customers show up near the service area.
type ScatterGeocoder struct {
	center domain.Location
	spread float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewScatterGeocoder creates a scatter geocoder seeded with seed
func NewScatterGeocoder(center domain.Location, spread float64, seed int64) *ScatterGeocoder {
	return &ScatterGeocoder{
		center: center,
		spread: spread,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

func (g *ScatterGeocoder) Locate(_ context.Context, _ string) (domain.Location, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return domain.Location{
		Lat: g.center.Lat + (g.rnd.Float64()-0.5)*g.spread,
		Lng: g.center.Lng + (g.rnd.Float64()-0.5)*g.spread,
	}, nil
}

// FixedGeocoder returns the same location for every address
type FixedGeocoder struct {
	Location domain.Location
}

func (g FixedGeocoder) Locate(_ context.Context, _ string) (domain.Location, error) {
	return g.Location, nil
}
