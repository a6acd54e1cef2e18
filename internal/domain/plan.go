package domain

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Path is one hop executed entirely on one venue.
type Path struct {
	VenueID       VenueID
	AncillaryData AncillaryData
	TokenIn       solana.PublicKey
	TokenOut      solana.PublicKey
	Shares        uint64
}

// HopGroup splits one token conversion across sibling paths.
type HopGroup struct {
	TargetToken solana.PublicKey
	Paths       []Path
}

type Route struct {
	Hops []HopGroup
}

type MegaRoute struct {
	Shares uint64
	Route  Route
}

// Plan is the normalised form every quote and execution works on. A bare
// Path or Route is a plan with one mega-route of one share.
type Plan struct {
	MegaRoutes []MegaRoute
}

func SingleHopRoute(p Path) Route {
	return Route{Hops: []HopGroup{{TargetToken: p.TokenOut, Paths: []Path{p}}}}
}

func PlanFromRoute(r Route) Plan {
	return Plan{MegaRoutes: []MegaRoute{{Shares: 1, Route: r}}}
}

func PlanFromPath(p Path) Plan {
	return PlanFromRoute(SingleHopRoute(p))
}

func PlanFromMegaRoutes(megaRoutes []MegaRoute) Plan {
	return Plan{MegaRoutes: megaRoutes}
}

func (h HopGroup) TokenIn() solana.PublicKey {
	if len(h.Paths) == 0 {
		return solana.PublicKey{}
	}
	return h.Paths[0].TokenIn
}

// HasPositiveShares reports whether at least one path carries a share.
func (h HopGroup) HasPositiveShares() bool {
	for _, p := range h.Paths {
		if p.Shares > 0 {
			return true
		}
	}
	return false
}

// Validate checks the hop invariants. Path-level errors carry the path index;
// the caller adds the hop index.
func (h HopGroup) Validate() error {
	if len(h.Paths) == 0 {
		return ErrEmptyPlan
	}
	if !h.HasPositiveShares() {
		return ErrSumOfSharesMustBePositive
	}
	tokenIn := h.Paths[0].TokenIn
	for i, p := range h.Paths {
		if !SameToken(p.TokenOut, h.TargetToken) {
			return AtPath(fmt.Errorf("%w: path tokenOut %s, hop target %s", ErrIncorrectPath, p.TokenOut, h.TargetToken), -1, i)
		}
		if !SameToken(p.TokenIn, tokenIn) {
			return AtPath(fmt.Errorf("%w: path tokenIn %s, hop tokenIn %s", ErrIncorrectPath, p.TokenIn, tokenIn), -1, i)
		}
	}
	return nil
}

func (r Route) TokenIn() solana.PublicKey {
	if len(r.Hops) == 0 {
		return solana.PublicKey{}
	}
	return r.Hops[0].TokenIn()
}

func (r Route) TokenOut() solana.PublicKey {
	if len(r.Hops) == 0 {
		return solana.PublicKey{}
	}
	return r.Hops[len(r.Hops)-1].TargetToken
}

func (r Route) Validate() error {
	if len(r.Hops) == 0 {
		return ErrEmptyPlan
	}
	for i, hop := range r.Hops {
		if err := hop.Validate(); err != nil {
			return AtHop(err, i)
		}
		if i > 0 && !SameToken(hop.TokenIn(), r.Hops[i-1].TargetToken) {
			return AtHop(fmt.Errorf("%w: hop tokenIn %s, previous target %s", ErrIncorrectPath, hop.TokenIn(), r.Hops[i-1].TargetToken), i)
		}
	}
	return nil
}

func (p Plan) TokenIn() solana.PublicKey {
	if len(p.MegaRoutes) == 0 {
		return solana.PublicKey{}
	}
	return p.MegaRoutes[0].Route.TokenIn()
}

func (p Plan) TokenOut() solana.PublicKey {
	if len(p.MegaRoutes) == 0 {
		return solana.PublicKey{}
	}
	return p.MegaRoutes[0].Route.TokenOut()
}

// HopCount is the number of hops of the longest mega-route.
func (p Plan) HopCount() int {
	n := 0
	for _, mr := range p.MegaRoutes {
		if len(mr.Route.Hops) > n {
			n = len(mr.Route.Hops)
		}
	}
	return n
}

// Validate checks every structural invariant of the plan.
func (p Plan) Validate() error {
	if len(p.MegaRoutes) == 0 {
		return Locate(ErrEmptyPlan)
	}
	positive := false
	for _, mr := range p.MegaRoutes {
		if mr.Shares > 0 {
			positive = true
			break
		}
	}
	if !positive {
		return Locate(ErrSumOfSharesMustBePositive)
	}
	tokenIn, tokenOut := p.TokenIn(), p.TokenOut()
	for i, mr := range p.MegaRoutes {
		if err := mr.Route.Validate(); err != nil {
			return AtMegaRoute(err, i)
		}
		if !SameToken(mr.Route.TokenIn(), tokenIn) || !SameToken(mr.Route.TokenOut(), tokenOut) {
			return AtMegaRoute(fmt.Errorf("%w: mega-route %s->%s, plan %s->%s",
				ErrIncorrectPath, mr.Route.TokenIn(), mr.Route.TokenOut(), tokenIn, tokenOut), i)
		}
	}
	return nil
}

type canonicalPath struct {
	VenueID  uint32
	Data     []byte
	TokenIn  [32]byte
	TokenOut [32]byte
	Shares   uint64
}

type canonicalHop struct {
	Target [32]byte
	Paths  []canonicalPath
}

type canonicalMegaRoute struct {
	Shares uint64
	Hops   []canonicalHop
}

type canonicalPlan struct {
	MegaRoutes []canonicalMegaRoute
}

func (p Plan) canonical() canonicalPlan {
	out := canonicalPlan{MegaRoutes: make([]canonicalMegaRoute, len(p.MegaRoutes))}
	for i, mr := range p.MegaRoutes {
		cmr := canonicalMegaRoute{Shares: mr.Shares, Hops: make([]canonicalHop, len(mr.Route.Hops))}
		for j, hop := range mr.Route.Hops {
			ch := canonicalHop{Target: hop.TargetToken, Paths: make([]canonicalPath, len(hop.Paths))}
			for k, path := range hop.Paths {
				ch.Paths[k] = canonicalPath{
					VenueID:  uint32(path.VenueID),
					Data:     []byte(path.AncillaryData),
					TokenIn:  path.TokenIn,
					TokenOut: path.TokenOut,
					Shares:   path.Shares,
				}
			}
			cmr.Hops[j] = ch
		}
		out.MegaRoutes[i] = cmr
	}
	return out
}

// Encode returns the canonical borsh encoding of the plan.
func (p Plan) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(p.canonical()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fingerprint hashes the canonical encoding. Identical plans always produce
// the same fingerprint.
func (p Plan) Fingerprint() (uint64, error) {
	raw, err := p.Encode()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(raw), nil
}

// FingerprintHex is Fingerprint formatted as 16 hex digits.
func (p Plan) FingerprintHex() (string, error) {
	h, err := p.Fingerprint()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h), nil
}
