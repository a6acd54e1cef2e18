package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v2"

	"github.com/hxuan190/route-aggregator/internal/adapters/dispatch"
	"github.com/hxuan190/route-aggregator/internal/adapters/ledger"
	"github.com/hxuan190/route-aggregator/internal/adapters/persistence"
	"github.com/hxuan190/route-aggregator/internal/adapters/receipts"
	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/config"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
	"github.com/hxuan190/route-aggregator/internal/services/market"
)

type VenueSpec struct {
	ID     uint32 `yaml:"id"`
	Name   string `yaml:"name"`
	Family string `yaml:"family"`
}

type BalanceSpec struct {
	Owner  string `json:"owner" yaml:"owner"`
	Token  string `json:"token" yaml:"token"`
	Amount string `json:"amount" yaml:"amount"`
}

// Workspace is an offline engine state: venues, token decimals, pools and
// opening balances.
//
//	venues:
//	  - {id: 1, name: cp-main, family: constant-product}
//	tokens:
//	  EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v: 6
//	pools:
//	  - address: ...
//	    family: constant-product
//	    tokens: [..., native]
//	    balances: ["1000000", "2000000"]
//	    decimals: [6, 9]
//	balances:
//	  - {owner: ..., token: native, amount: "1000000000"}
type Workspace struct {
	Custody  string            `yaml:"custody,omitempty"`
	Venues   []VenueSpec       `yaml:"venues"`
	Tokens   map[string]uint8  `yaml:"tokens,omitempty"`
	Pools    []domain.PoolSpec `yaml:"pools,omitempty"`
	Balances []BalanceSpec     `yaml:"balances,omitempty"`
}

func readYAML(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(raw, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func LoadWorkspace(path string) (*Workspace, error) {
	var ws Workspace
	if err := readYAML(path, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func LoadPlan(path string) (domain.Plan, error) {
	var spec domain.PlanSpec
	if err := readYAML(path, &spec); err != nil {
		return domain.Plan{}, err
	}
	return spec.Build()
}

func (ws *Workspace) venueEntries() ([]config.VenueEntry, error) {
	entries := make([]config.VenueEntry, 0, len(ws.Venues))
	for _, v := range ws.Venues {
		family, err := domain.ParseVenueFamily(v.Family)
		if err != nil {
			return nil, fmt.Errorf("venue %d: %w", v.ID, err)
		}
		entries = append(entries, config.VenueEntry{ID: domain.VenueID(v.ID), Name: v.Name, Family: family})
	}
	vc := config.VenueConfig{Venues: entries}
	if err := vc.Validate(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Build assembles an in-memory Service from the workspace. rpcURL is only
// needed for concentrated venues.
func (ws *Workspace) Build(ctx context.Context, rpcURL string) (*aggregator.Service, error) {
	custody := common.DefaultCustodyAccount
	if ws.Custody != "" {
		var err error
		if custody, err = solana.PublicKeyFromBase58(ws.Custody); err != nil {
			return nil, fmt.Errorf("custody: %w", err)
		}
	}

	pools := persistence.NewMemoryPools()
	led := ledger.NewLedger(custody)
	venues := market.NewVenueRegistry()

	var fetcher market.DecimalsFetcher
	var quoter exchange.Quoter
	var dispatcher exchange.Dispatcher
	if rpcURL != "" {
		client := rpc.New(rpcURL)
		fetcher = market.NewRPCDecimalsFetcher(client)
		vortex := exchange.NewVortexQuoter(exchange.NewRPCVortexLoader(client, common.VortexProgramID))
		quoter = vortex
		dispatcher = dispatch.NewPaper(vortex, led)
	}
	tokens := market.NewTokenRegistry(common.DefaultTokenCacheSize, fetcher)
	known := make(map[solana.PublicKey]bool, len(ws.Tokens))
	for mint, decimals := range ws.Tokens {
		key, err := domain.ParseToken(mint)
		if err != nil {
			return nil, fmt.Errorf("tokens: %q: %w", mint, err)
		}
		tokens.SetDecimals(key, decimals)
		known[key] = true
	}

	entries, err := ws.venueEntries()
	if err != nil {
		return nil, err
	}
	deps := aggregator.AdapterDeps{Pools: pools, Settlement: led, Balances: led, Quoters: venues, Dispatcher: dispatcher}
	if err := aggregator.RegisterVenues(venues, entries, deps, quoter); err != nil {
		return nil, err
	}

	svc := aggregator.NewService(aggregator.Components{
		Pools:    pools,
		Ledger:   led,
		Venues:   venues,
		Tokens:   tokens,
		Receipts: receipts.NewMemory(),
	})
	for _, spec := range ws.Pools {
		p, err := spec.ToState()
		if err != nil {
			return nil, err
		}
		if err := svc.UpsertPool(p); err != nil {
			return nil, err
		}
		// Pool decimals double as token decimals when the workspace omits them.
		for i, t := range p.Tokens {
			if !known[t] {
				tokens.SetDecimals(t, p.Decimals[i])
				known[t] = true
			}
		}
	}
	for i, b := range ws.Balances {
		owner, err := solana.PublicKeyFromBase58(b.Owner)
		if err != nil {
			return nil, fmt.Errorf("balance %d owner: %w", i, err)
		}
		token, err := domain.ParseToken(b.Token)
		if err != nil {
			return nil, fmt.Errorf("balance %d token: %w", i, err)
		}
		amount, err := uint256.FromDecimal(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("balance %d amount: %w", i, err)
		}
		if err := svc.Fund(ctx, token, owner, amount); err != nil {
			return nil, err
		}
	}
	return svc, nil
}
