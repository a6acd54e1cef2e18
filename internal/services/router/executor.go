package router

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// TokenVault moves balances between callers and the executor's custody
// account.
type TokenVault interface {
	TransferIn(ctx context.Context, token, from solana.PublicKey, amount *uint256.Int) error
	TransferOut(ctx context.Context, token, to solana.PublicKey, amount *uint256.Int) error
}

// NativeWrapper converts between the native currency and its wrapped token
// inside one account.
type NativeWrapper interface {
	Wrap(ctx context.Context, owner solana.PublicKey, amount *uint256.Int) error
	Unwrap(ctx context.Context, owner solana.PublicKey, amount *uint256.Int) error
}

// SwapExecutor walks a plan with adapter executes, chaining realised outputs
// from hop to hop. Intermediate balances sit in the custody account.
type SwapExecutor struct {
	engine  *AmountEngine
	clock   Clock
	vault   TokenVault
	wrapper NativeWrapper
	custody solana.PublicKey
	log     *common.ServiceLogger
}

func NewSwapExecutor(engine *AmountEngine, clock Clock, vault TokenVault, wrapper NativeWrapper, custody solana.PublicKey) *SwapExecutor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SwapExecutor{
		engine:  engine,
		clock:   clock,
		vault:   vault,
		wrapper: wrapper,
		custody: custody,
		log:     common.NewComponentLogger("swapExecutor"),
	}
}

func (x *SwapExecutor) Custody() solana.PublicKey {
	return x.custody
}

// ExecutePaths executes req.Plan and returns the amount sent to
// req.Recipient. It does not roll back partial state on failure; callers wrap
// it in their own snapshot.
func (x *SwapExecutor) ExecutePaths(ctx context.Context, req domain.ExecuteRequest) (*uint256.Int, error) {
	start := time.Now()
	out, err := x.executePaths(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
		x.log.Warn().Err(err).Str("tokenIn", domain.FormatToken(req.TokenIn)).Str("tokenOut", domain.FormatToken(req.TokenOut)).Msg("[SwapExecutor] execution failed")
	}
	metrics.Executions.WithLabelValues(status).Inc()
	metrics.ExecutionDuration.Observe(time.Since(start).Seconds())
	return out, err
}

func (x *SwapExecutor) executePaths(ctx context.Context, req domain.ExecuteRequest) (*uint256.Int, error) {
	now := x.clock.Now().Unix()
	if req.Deadline < now {
		return nil, domain.Locate(fmt.Errorf("%w: deadline %d, now %d", domain.ErrDeadlinePassed, req.Deadline, now))
	}
	if req.AmountIn == nil || req.AmountIn.IsZero() {
		return nil, domain.Locate(domain.ErrZeroAmountIn)
	}
	if err := req.Plan.Validate(); err != nil {
		return nil, err
	}
	if !domain.SameToken(req.Plan.TokenIn(), req.TokenIn) || !domain.SameToken(req.Plan.TokenOut(), req.TokenOut) {
		return nil, domain.Locate(fmt.Errorf("%w: plan %s->%s, request %s->%s", domain.ErrIncorrectPath,
			domain.FormatToken(req.Plan.TokenIn()), domain.FormatToken(req.Plan.TokenOut()),
			domain.FormatToken(req.TokenIn), domain.FormatToken(req.TokenOut)))
	}
	minOut := req.MinAmountOut
	if minOut == nil {
		minOut = new(uint256.Int)
	}

	if err := x.vault.TransferIn(ctx, req.TokenIn, req.Payer, req.AmountIn); err != nil {
		return nil, domain.Locate(err)
	}
	if domain.IsNative(req.TokenIn) {
		if err := x.wrap(ctx, req.AmountIn); err != nil {
			return nil, domain.Locate(err)
		}
	}

	parts, err := SplitByShares(req.AmountIn, megaRouteShares(req.Plan.MegaRoutes))
	if err != nil {
		return nil, domain.Locate(err)
	}
	total := new(uint256.Int)
	for i, mr := range req.Plan.MegaRoutes {
		if parts[i].IsZero() {
			continue
		}
		out, err := x.executeRoute(ctx, mr.Route, parts[i], req.Deadline)
		if err != nil {
			return nil, domain.AtMegaRoute(err, i)
		}
		if _, overflow := total.AddOverflow(total, out); overflow {
			return nil, domain.AtMegaRoute(domain.ErrArithmeticOverflow, i)
		}
	}

	if total.Lt(minOut) {
		return nil, domain.Locate(fmt.Errorf("%w: got %s, min %s", domain.ErrSlippageToleranceExceeded, total.Dec(), minOut.Dec()))
	}
	if domain.IsNative(req.TokenOut) {
		if err := x.unwrap(ctx, total); err != nil {
			return nil, domain.Locate(err)
		}
	}
	if err := x.vault.TransferOut(ctx, req.TokenOut, req.Recipient, total); err != nil {
		return nil, domain.Locate(err)
	}
	return total, nil
}

func (x *SwapExecutor) executeRoute(ctx context.Context, route domain.Route, amountIn *uint256.Int, deadline int64) (*uint256.Int, error) {
	running := amountIn
	for h, hop := range route.Hops {
		parts, err := SplitByShares(running, hopShares(hop))
		if err != nil {
			return nil, domain.AtHop(err, h)
		}
		hopOut := new(uint256.Int)
		for p, path := range hop.Paths {
			if parts[p].IsZero() {
				continue
			}
			out, err := x.engine.Execute(ctx, path, parts[p], x.custody, x.custody, deadline, nil)
			if err != nil {
				return nil, domain.AtPath(err, h, p)
			}
			if _, overflow := hopOut.AddOverflow(hopOut, out); overflow {
				return nil, domain.AtPath(domain.ErrArithmeticOverflow, h, p)
			}
		}
		running = hopOut
	}
	return running, nil
}

func (x *SwapExecutor) wrap(ctx context.Context, amount *uint256.Int) error {
	if x.wrapper == nil {
		return fmt.Errorf("%w: no native wrapper", domain.ErrUnsupportedOperation)
	}
	return x.wrapper.Wrap(ctx, x.custody, amount)
}

func (x *SwapExecutor) unwrap(ctx context.Context, amount *uint256.Int) error {
	if x.wrapper == nil {
		return fmt.Errorf("%w: no native wrapper", domain.ErrUnsupportedOperation)
	}
	return x.wrapper.Unwrap(ctx, x.custody, amount)
}
