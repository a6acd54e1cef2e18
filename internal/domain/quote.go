package domain

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

// PathQuote is the priced leg of one path. Wad fields are normalised to 18
// decimals; PriceWad is AmountOutWad/AmountInWad.
type PathQuote struct {
	VenueID      VenueID
	Family       VenueFamily
	TokenIn      solana.PublicKey
	TokenOut     solana.PublicKey
	AmountIn     *uint256.Int
	AmountOut    *uint256.Int
	AmountInWad  *uint256.Int
	AmountOutWad *uint256.Int
	PriceWad     *uint256.Int
	Skipped      bool
}

type HopQuote struct {
	TargetToken solana.PublicKey
	AmountIn    *uint256.Int
	AmountOut   *uint256.Int
	Paths       []PathQuote
}

type RouteQuote struct {
	Shares    uint64
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Hops      []HopQuote
}

type Quote struct {
	Direction Direction
	PlanHash  string
	TokenIn   solana.PublicKey
	TokenOut  solana.PublicKey
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Routes    []RouteQuote
}

type PathQuoteView struct {
	VenueID      VenueID `json:"venueId" yaml:"venueId"`
	Family       string  `json:"family" yaml:"family"`
	TokenIn      string  `json:"tokenIn" yaml:"tokenIn"`
	TokenOut     string  `json:"tokenOut" yaml:"tokenOut"`
	AmountIn     string  `json:"amountIn" yaml:"amountIn"`
	AmountOut    string  `json:"amountOut" yaml:"amountOut"`
	AmountInWad  string  `json:"amountInWad,omitempty" yaml:"amountInWad,omitempty"`
	AmountOutWad string  `json:"amountOutWad,omitempty" yaml:"amountOutWad,omitempty"`
	PriceWad     string  `json:"priceWad,omitempty" yaml:"priceWad,omitempty"`
	Skipped      bool    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

type HopQuoteView struct {
	TargetToken string          `json:"targetToken" yaml:"targetToken"`
	AmountIn    string          `json:"amountIn" yaml:"amountIn"`
	AmountOut   string          `json:"amountOut" yaml:"amountOut"`
	Paths       []PathQuoteView `json:"paths" yaml:"paths"`
}

type RouteQuoteView struct {
	Shares    uint64         `json:"shares" yaml:"shares"`
	AmountIn  string         `json:"amountIn" yaml:"amountIn"`
	AmountOut string         `json:"amountOut" yaml:"amountOut"`
	Hops      []HopQuoteView `json:"hops" yaml:"hops"`
}

type QuoteView struct {
	Direction Direction        `json:"direction" yaml:"direction"`
	PlanHash  string           `json:"planHash" yaml:"planHash"`
	TokenIn   string           `json:"tokenIn" yaml:"tokenIn"`
	TokenOut  string           `json:"tokenOut" yaml:"tokenOut"`
	AmountIn  string           `json:"amountIn" yaml:"amountIn"`
	AmountOut string           `json:"amountOut" yaml:"amountOut"`
	Routes    []RouteQuoteView `json:"routes" yaml:"routes"`
}

func dec(v *uint256.Int) string {
	if v == nil {
		return ""
	}
	return v.Dec()
}

func (q *Quote) View() QuoteView {
	v := QuoteView{
		Direction: q.Direction,
		PlanHash:  q.PlanHash,
		TokenIn:   FormatToken(q.TokenIn),
		TokenOut:  FormatToken(q.TokenOut),
		AmountIn:  dec(q.AmountIn),
		AmountOut: dec(q.AmountOut),
		Routes:    make([]RouteQuoteView, len(q.Routes)),
	}
	for i, r := range q.Routes {
		rv := RouteQuoteView{
			Shares:    r.Shares,
			AmountIn:  dec(r.AmountIn),
			AmountOut: dec(r.AmountOut),
			Hops:      make([]HopQuoteView, len(r.Hops)),
		}
		for j, h := range r.Hops {
			hv := HopQuoteView{
				TargetToken: FormatToken(h.TargetToken),
				AmountIn:    dec(h.AmountIn),
				AmountOut:   dec(h.AmountOut),
				Paths:       make([]PathQuoteView, len(h.Paths)),
			}
			for k, p := range h.Paths {
				hv.Paths[k] = PathQuoteView{
					VenueID:      p.VenueID,
					Family:       p.Family.String(),
					TokenIn:      FormatToken(p.TokenIn),
					TokenOut:     FormatToken(p.TokenOut),
					AmountIn:     dec(p.AmountIn),
					AmountOut:    dec(p.AmountOut),
					AmountInWad:  dec(p.AmountInWad),
					AmountOutWad: dec(p.AmountOutWad),
					PriceWad:     dec(p.PriceWad),
					Skipped:      p.Skipped,
				}
			}
			rv.Hops[j] = hv
		}
		v.Routes[i] = rv
	}
	return v
}
