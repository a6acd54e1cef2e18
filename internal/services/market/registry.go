// Package market resolves venue ids to exchange adapters and tokens to their
// decimals.
package market

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
)

type Venue struct {
	ID      domain.VenueID
	Name    string
	Family  domain.VenueFamily
	Adapter exchange.Adapter
}

// VenueRegistry maps venue ids to adapters and, for venues that need one, an
// external quoter.
type VenueRegistry struct {
	mu      sync.RWMutex
	venues  map[domain.VenueID]*Venue
	quoters map[domain.VenueID]exchange.Quoter
}

func NewVenueRegistry() *VenueRegistry {
	return &VenueRegistry{
		venues:  make(map[domain.VenueID]*Venue),
		quoters: make(map[domain.VenueID]exchange.Quoter),
	}
}

// Register binds an adapter to a venue id, replacing any previous binding.
func (r *VenueRegistry) Register(id domain.VenueID, name string, adapter exchange.Adapter) error {
	if adapter == nil {
		return fmt.Errorf("venue %d: nil adapter", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.venues[id] = &Venue{ID: id, Name: name, Family: adapter.Family(), Adapter: adapter}
	metrics.VenueCount.Set(float64(len(r.venues)))
	return nil
}

func (r *VenueRegistry) RegisterQuoter(id domain.VenueID, quoter exchange.Quoter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quoter == nil {
		delete(r.quoters, id)
		return
	}
	r.quoters[id] = quoter
}

func (r *VenueRegistry) Resolve(id domain.VenueID) (exchange.Adapter, error) {
	v, err := r.Venue(id)
	if err != nil {
		return nil, err
	}
	return v.Adapter, nil
}

func (r *VenueRegistry) Venue(id domain.VenueID) (*Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.venues[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownVenue, id)
	}
	return v, nil
}

// QuoterFor implements exchange.QuoterSource.
func (r *VenueRegistry) QuoterFor(id domain.VenueID) (exchange.Quoter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quoters[id]
	return q, ok
}

// Venues lists registered venues ordered by id.
func (r *VenueRegistry) Venues() []Venue {
	r.mu.RLock()
	out := make([]Venue, 0, len(r.venues))
	for _, v := range r.venues {
		out = append(out, *v)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
