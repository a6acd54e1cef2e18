package domain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type PathSpec struct {
	VenueID       uint32 `json:"venueId" yaml:"venueId"`
	AncillaryData string `json:"ancillaryData" yaml:"ancillaryData"`
	TokenIn       string `json:"tokenIn" yaml:"tokenIn"`
	TokenOut      string `json:"tokenOut" yaml:"tokenOut"`
	Shares        uint64 `json:"shares" yaml:"shares"`
}

type HopGroupSpec struct {
	TargetToken string     `json:"targetToken" yaml:"targetToken"`
	Paths       []PathSpec `json:"paths" yaml:"paths"`
}

type RouteSpec struct {
	Hops []HopGroupSpec `json:"hops" yaml:"hops"`
}

type MegaRouteSpec struct {
	Shares uint64    `json:"shares" yaml:"shares"`
	Route  RouteSpec `json:"route" yaml:"route"`
}

// PlanSpec is the wire form of a plan. Exactly one of Path, Route or
// MegaRoutes must be set.
type PlanSpec struct {
	Path       *PathSpec       `json:"path,omitempty" yaml:"path,omitempty"`
	Route      *RouteSpec      `json:"route,omitempty" yaml:"route,omitempty"`
	MegaRoutes []MegaRouteSpec `json:"megaRoutes,omitempty" yaml:"megaRoutes,omitempty"`
}

func parseToken(field, s string) (solana.PublicKey, error) {
	t, err := ParseToken(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s %q: %v", ErrIncorrectPath, field, s, err)
	}
	return t, nil
}

func (s PathSpec) Build() (Path, error) {
	data, err := ParseAncillaryData(s.AncillaryData)
	if err != nil {
		return Path{}, err
	}
	in, err := parseToken("tokenIn", s.TokenIn)
	if err != nil {
		return Path{}, err
	}
	out, err := parseToken("tokenOut", s.TokenOut)
	if err != nil {
		return Path{}, err
	}
	return Path{
		VenueID:       VenueID(s.VenueID),
		AncillaryData: data,
		TokenIn:       in,
		TokenOut:      out,
		Shares:        s.Shares,
	}, nil
}

func (s RouteSpec) Build() (Route, error) {
	r := Route{Hops: make([]HopGroup, len(s.Hops))}
	for i, h := range s.Hops {
		target, err := parseToken("targetToken", h.TargetToken)
		if err != nil {
			return Route{}, AtHop(err, i)
		}
		hop := HopGroup{TargetToken: target, Paths: make([]Path, len(h.Paths))}
		for j, p := range h.Paths {
			if hop.Paths[j], err = p.Build(); err != nil {
				return Route{}, AtPath(err, i, j)
			}
		}
		r.Hops[i] = hop
	}
	return r, nil
}

// Build converts the spec into a Plan and validates it.
func (s PlanSpec) Build() (Plan, error) {
	set := 0
	if s.Path != nil {
		set++
	}
	if s.Route != nil {
		set++
	}
	if len(s.MegaRoutes) > 0 {
		set++
	}
	if set != 1 {
		return Plan{}, Locate(fmt.Errorf("%w: exactly one of path, route or megaRoutes must be set", ErrEmptyPlan))
	}

	var plan Plan
	switch {
	case s.Path != nil:
		p, err := s.Path.Build()
		if err != nil {
			return Plan{}, AtPath(err, 0, 0)
		}
		if p.Shares == 0 {
			p.Shares = 1
		}
		plan = PlanFromPath(p)
	case s.Route != nil:
		r, err := s.Route.Build()
		if err != nil {
			return Plan{}, Locate(err)
		}
		plan = PlanFromRoute(r)
	default:
		mrs := make([]MegaRoute, len(s.MegaRoutes))
		for i, mr := range s.MegaRoutes {
			r, err := mr.Route.Build()
			if err != nil {
				return Plan{}, AtMegaRoute(err, i)
			}
			mrs[i] = MegaRoute{Shares: mr.Shares, Route: r}
		}
		plan = PlanFromMegaRoutes(mrs)
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}
