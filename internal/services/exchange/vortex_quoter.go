package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/holiman/uint256"
	valiant "github.com/thehyperflames/valiant_go"
	vortex_go "github.com/thehyperflames/valiant_go/generated/valiant"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

var ErrCLMMCalculation = errors.New("CLMM calculation failed")

// vortexQuoteCounter for sampling metrics (1/128 calls)
var vortexQuoteCounter atomic.Uint64

// Pre-allocated empty slice to avoid allocation when no tick array was found
var emptyTickArrays = []*vortex_go.TickArrayAccount{}

// VortexLoader returns the decoded pool account and its relevant tick arrays.
type VortexLoader interface {
	Load(ctx context.Context, pool solana.PublicKey) (*vortex_go.VortexAccount, []*vortex_go.TickArrayAccount, error)
}

type RPCVortexLoader struct {
	client    *rpc.Client
	programID solana.PublicKey
	timeout   time.Duration
}

func NewRPCVortexLoader(client *rpc.Client, programID solana.PublicKey) *RPCVortexLoader {
	return &RPCVortexLoader{client: client, programID: programID, timeout: 10 * time.Second}
}

func (l *RPCVortexLoader) Load(ctx context.Context, pool solana.PublicKey) (*vortex_go.VortexAccount, []*vortex_go.TickArrayAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	info, err := l.client.GetAccountInfo(ctx, pool)
	if err != nil {
		return nil, nil, fmt.Errorf("load vortex %s: %w", pool, err)
	}
	if info == nil || info.Value == nil {
		return nil, nil, fmt.Errorf("%w: vortex %s not found", domain.ErrInvalidPool, pool)
	}
	data := info.Value.Data.GetBinary()
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("%w: vortex %s account too short", domain.ErrInvalidPool, pool)
	}
	var vortex vortex_go.VortexAccount
	if err := bin.NewBinDecoder(data[8:]).Decode(&vortex); err != nil {
		return nil, nil, fmt.Errorf("%w: decode vortex %s: %v", domain.ErrInvalidPool, pool, err)
	}

	pdas, err := valiant.GetRelevantTickArrayPDAs(l.programID, pool, vortex.TickCurrentIndex, vortex.TickSpacing)
	if err != nil || len(pdas) == 0 {
		return &vortex, emptyTickArrays, nil
	}
	res, err := l.client.GetMultipleAccounts(ctx, pdas...)
	if err != nil {
		return nil, nil, fmt.Errorf("load tick arrays of %s: %w", pool, err)
	}
	if res == nil || res.Value == nil {
		return &vortex, emptyTickArrays, nil
	}
	tickArrays := make([]*vortex_go.TickArrayAccount, 0, len(res.Value))
	for _, acc := range res.Value {
		if acc == nil {
			continue
		}
		raw := acc.Data.GetBinary()
		if len(raw) < 8 {
			continue
		}
		var tickArray vortex_go.TickArrayAccount
		if err := bin.NewBinDecoder(raw[8:]).Decode(&tickArray); err != nil {
			continue
		}
		tickArrays = append(tickArrays, &tickArray)
	}
	return &vortex, tickArrays, nil
}

// VortexQuoter prices Vortex CLMM pools with valiant swap math.
type VortexQuoter struct {
	loader VortexLoader
}

func NewVortexQuoter(loader VortexLoader) *VortexQuoter {
	return &VortexQuoter{loader: loader}
}

func vortexDirection(vortex *vortex_go.VortexAccount, tokenIn, tokenOut solana.PublicKey) (bool, error) {
	switch {
	case vortex.TokenMintA.Equals(tokenIn) && vortex.TokenMintB.Equals(tokenOut):
		return true, nil
	case vortex.TokenMintB.Equals(tokenIn) && vortex.TokenMintA.Equals(tokenOut):
		return false, nil
	}
	return false, fmt.Errorf("%w: vortex trades %s/%s, not %s->%s", domain.ErrIncorrectPath, vortex.TokenMintA, vortex.TokenMintB, tokenIn, tokenOut)
}

func (q *VortexQuoter) quote(ctx context.Context, pool, tokenIn, tokenOut solana.PublicKey, amount *uint256.Int, exactIn bool) (*uint256.Int, error) {
	// Sample metrics 1/128 to reduce hot-path overhead
	sample := vortexQuoteCounter.Add(1)&0x7F == 0
	var start time.Time
	if sample {
		start = time.Now()
	}

	if amount.IsZero() {
		return nil, domain.ErrZeroAmount
	}
	if !amount.IsUint64() {
		return nil, fmt.Errorf("%w: amount too large for u64", domain.ErrArithmeticOverflow)
	}
	vortex, tickArrays, err := q.loader.Load(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("quote vortex %s: %w", pool, err)
	}
	aToB, err := vortexDirection(vortex, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}

	var out uint64
	if exactIn {
		res, err := valiant.ComputeSwapExactIn(amount.Uint64(), aToB, vortex, tickArrays)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCLMMCalculation, err)
		}
		out = res.AmountOut
	} else {
		res, err := valiant.ComputeSwapExactOut(amount.Uint64(), aToB, vortex, tickArrays)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCLMMCalculation, err)
		}
		out = res.AmountIn
	}

	if sample {
		metrics.VortexQuoteDuration.Observe(time.Since(start).Seconds())
	}
	return uint256.NewInt(out), nil
}

// QuoteExactIn ignores feeTier; the fee rate is read from the pool account.
func (q *VortexQuoter) QuoteExactIn(ctx context.Context, pool, tokenIn, tokenOut solana.PublicKey, amountIn *uint256.Int, _ uint32) (*uint256.Int, error) {
	return q.quote(ctx, pool, tokenIn, tokenOut, amountIn, true)
}

func (q *VortexQuoter) QuoteExactOut(ctx context.Context, pool, tokenIn, tokenOut solana.PublicKey, amountOut *uint256.Int, _ uint32) (*uint256.Int, error) {
	return q.quote(ctx, pool, tokenIn, tokenOut, amountOut, false)
}
