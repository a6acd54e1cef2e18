package exchange

import (
	"bytes"
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

// swapCallTag prefixes the call data of a concentrated-liquidity swap.
const swapCallTag byte = 0xC1

// ConcentratedSwapCall is the payload dispatched to a concentrated-liquidity
// venue. Amounts are 32-byte big-endian.
type ConcentratedSwapCall struct {
	Pool         solana.PublicKey
	TokenIn      solana.PublicKey
	TokenOut     solana.PublicKey
	AmountIn     [32]byte
	MinAmountOut [32]byte
	Payer        solana.PublicKey
	Recipient    solana.PublicKey
	Deadline     int64
	FeeTier      uint32
}

func EncodeConcentratedSwapCall(c ConcentratedSwapCall) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(swapCallTag)
	buf.WriteByte(AncillaryVersion)
	if err := bin.NewBorshEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeConcentratedSwapCall returns false when callData is not a swap call.
func DecodeConcentratedSwapCall(callData []byte) (*ConcentratedSwapCall, bool, error) {
	if len(callData) < 2 || callData[0] != swapCallTag {
		return nil, false, nil
	}
	if callData[1] != AncillaryVersion {
		return nil, true, fmt.Errorf("%w: swap call version %d", domain.ErrInvalidAncillaryData, callData[1])
	}
	var c ConcentratedSwapCall
	if err := bin.NewBorshDecoder(callData[2:]).Decode(&c); err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrInvalidAncillaryData, err)
	}
	return &c, true, nil
}

// EncodeAmount is the 32-byte big-endian form dispatchers return.
func EncodeAmount(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

func decodeAmount(raw []byte) (*uint256.Int, error) {
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: dispatcher returned %d bytes", domain.ErrInvalidPool, len(raw))
	}
	return new(uint256.Int).SetBytes32(raw), nil
}

// ConcentratedAdapter prices through the venue's registered quoter and
// executes through a dispatcher.
type ConcentratedAdapter struct {
	venue      domain.VenueID
	quoters    QuoterSource
	dispatcher Dispatcher
}

func NewConcentratedAdapter(venue domain.VenueID, quoters QuoterSource, dispatcher Dispatcher) *ConcentratedAdapter {
	return &ConcentratedAdapter{venue: venue, quoters: quoters, dispatcher: dispatcher}
}

func (a *ConcentratedAdapter) Family() domain.VenueFamily {
	return domain.FamilyConcentratedLiquidity
}

func (a *ConcentratedAdapter) quoter() (Quoter, error) {
	if a.quoters == nil {
		return nil, fmt.Errorf("%w: venue %d", domain.ErrQuoterNotProvided, a.venue)
	}
	q, ok := a.quoters.QuoterFor(a.venue)
	if !ok || q == nil {
		return nil, fmt.Errorf("%w: venue %d", domain.ErrQuoterNotProvided, a.venue)
	}
	return q, nil
}

func (a *ConcentratedAdapter) QuoteForward(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountIn *uint256.Int) (*uint256.Int, error) {
	q, err := a.quoter()
	if err != nil {
		return nil, err
	}
	d, err := decodeConcentrated(data)
	if err != nil {
		return nil, err
	}
	return q.QuoteExactIn(ctx, d.Pool, tokenIn, tokenOut, amountIn, d.FeeTier)
}

func (a *ConcentratedAdapter) QuoteReverse(ctx context.Context, data domain.AncillaryData, tokenIn, tokenOut solana.PublicKey, amountOut *uint256.Int) (*uint256.Int, error) {
	q, err := a.quoter()
	if err != nil {
		return nil, err
	}
	d, err := decodeConcentrated(data)
	if err != nil {
		return nil, err
	}
	return q.QuoteExactOut(ctx, d.Pool, tokenIn, tokenOut, amountOut, d.FeeTier)
}

func (a *ConcentratedAdapter) Execute(ctx context.Context, p ExecuteParams) (*uint256.Int, error) {
	if a.dispatcher == nil {
		return nil, fmt.Errorf("%w: venue %d has no dispatcher", domain.ErrUnsupportedOperation, a.venue)
	}
	d, err := decodeConcentrated(p.Data)
	if err != nil {
		return nil, err
	}
	minOut := p.MinAmountOut
	if minOut == nil {
		minOut = new(uint256.Int)
	}
	callData, err := EncodeConcentratedSwapCall(ConcentratedSwapCall{
		Pool:         d.Pool,
		TokenIn:      p.TokenIn,
		TokenOut:     p.TokenOut,
		AmountIn:     p.AmountIn.Bytes32(),
		MinAmountOut: minOut.Bytes32(),
		Payer:        p.Payer,
		Recipient:    p.Recipient,
		Deadline:     p.Deadline,
		FeeTier:      d.FeeTier,
	})
	if err != nil {
		return nil, err
	}
	raw, err := a.dispatcher.Dispatch(ctx, Call{Target: d.Pool, CallData: callData})
	if err != nil {
		return nil, err
	}
	out, err := decodeAmount(raw)
	if err != nil {
		return nil, err
	}
	if out.Lt(minOut) {
		return nil, fmt.Errorf("%w: got %s, min %s", domain.ErrSlippageToleranceExceeded, out.Dec(), minOut.Dec())
	}
	return out, nil
}
