package aggregator

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/route-aggregator/internal/config"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
	"github.com/hxuan190/route-aggregator/internal/services/market"
)

// AdapterDeps are the collaborators adapters are built from. Nil entries
// leave the matching adapter operations unsupported.
type AdapterDeps struct {
	Pools      exchange.PoolStore
	Settlement exchange.Settlement
	Balances   exchange.BalanceReader
	Quoters    exchange.QuoterSource
	Dispatcher exchange.Dispatcher
}

// NewAdapter builds the adapter for one venue of the given family.
func NewAdapter(family domain.VenueFamily, id domain.VenueID, deps AdapterDeps) (exchange.Adapter, error) {
	switch family {
	case domain.FamilyConstantProduct:
		return exchange.NewConstantProductAdapter(deps.Pools, deps.Settlement), nil
	case domain.FamilyStableSwap:
		return exchange.NewStableSwapAdapter(deps.Pools, deps.Settlement), nil
	case domain.FamilyWeightedPool:
		return exchange.NewWeightedPoolAdapter(deps.Pools, deps.Settlement), nil
	case domain.FamilyConcentratedLiquidity:
		return exchange.NewConcentratedAdapter(id, deps.Quoters, deps.Dispatcher), nil
	case domain.FamilyGenericMulticall:
		return exchange.NewMulticallAdapter(deps.Dispatcher, deps.Balances), nil
	}
	return nil, fmt.Errorf("venue %d: unsupported family %s", id, family)
}

// RegisterVenues builds and registers one adapter per entry. Concentrated
// venues are priced by quoter, which must be set when any are configured.
func RegisterVenues(venues *market.VenueRegistry, entries []config.VenueEntry, deps AdapterDeps, quoter exchange.Quoter) error {
	for _, v := range entries {
		if v.Family == domain.FamilyConcentratedLiquidity && quoter == nil {
			return fmt.Errorf("venue %d: %w for concentrated venue", v.ID, domain.ErrQuoterNotProvided)
		}
		adapter, err := NewAdapter(v.Family, v.ID, deps)
		if err != nil {
			return err
		}
		if err := venues.Register(v.ID, v.Name, adapter); err != nil {
			return err
		}
		if v.Family == domain.FamilyConcentratedLiquidity {
			venues.RegisterQuoter(v.ID, quoter)
		}
		log.Info().Uint32("venue", uint32(v.ID)).Str("name", v.Name).Str("family", v.Family.String()).Msg("[aggregatorService] registered venue")
	}
	return nil
}
