package router

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

var testNow = time.Unix(1_700_000_000, 0)

func scenarioRequest(m *testMarket, minOut *uint256.Int) domain.ExecuteRequest {
	return domain.ExecuteRequest{
		TokenIn:      tokA,
		TokenOut:     tokC,
		AmountIn:     units(100, 18),
		Payer:        payer,
		Recipient:    recv,
		Plan:         m.scenarioPlan(),
		Deadline:     testNow.Unix() + 60,
		MinAmountOut: minOut,
	}
}

func TestExecutePathsMatchesQuote(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	q, err := m.mega.QuoteForward(ctx, m.scenarioPlan(), units(100, 18))
	require.NoError(t, err)

	vault := &spyVault{}
	x := m.executor(fixedClock{now: testNow}, vault, nil)
	out, err := x.ExecutePaths(ctx, scenarioRequest(m, q.AmountOut))
	require.NoError(t, err)
	assert.Equal(t, q.AmountOut, out)

	require.Len(t, vault.in, 1)
	assert.Equal(t, transfer{tokA, payer, units(100, 18).Dec()}, vault.in[0])
	require.Len(t, vault.out, 1)
	assert.Equal(t, transfer{tokC, recv, q.AmountOut.Dec()}, vault.out[0])

	// Executed swaps moved the pools, so the same plan now quotes lower.
	after, err := m.mega.QuoteForward(ctx, m.scenarioPlan(), units(100, 18))
	require.NoError(t, err)
	assert.False(t, after.AmountOut.Gt(q.AmountOut))
}

func TestExecutePathsSlippage(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	q, err := m.mega.QuoteForward(ctx, m.scenarioPlan(), units(100, 18))
	require.NoError(t, err)

	vault := &spyVault{}
	x := m.executor(fixedClock{now: testNow}, vault, nil)
	minOut := new(uint256.Int).AddUint64(q.AmountOut, 1)
	_, err = x.ExecutePaths(ctx, scenarioRequest(m, minOut))
	assert.ErrorIs(t, err, domain.ErrSlippageToleranceExceeded)
	assert.Empty(t, vault.out)
}

func TestExecutePathsDeadline(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	vault := &spyVault{}
	x := m.executor(fixedClock{now: testNow}, vault, nil)

	req := scenarioRequest(m, nil)
	req.Deadline = testNow.Unix() - 1
	_, err := x.ExecutePaths(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDeadlinePassed)
	assert.Zero(t, m.venues.calls.Load())
	assert.Empty(t, vault.in)

	req.AmountIn = new(uint256.Int)
	_, err = x.ExecutePaths(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDeadlinePassed)

	req.Deadline = testNow.Unix()
	_, err = x.ExecutePaths(ctx, req)
	assert.ErrorIs(t, err, domain.ErrZeroAmountIn)

	req.AmountIn = units(1, 18)
	_, err = x.ExecutePaths(ctx, req)
	assert.NoError(t, err)
}

func TestExecutePathsRejectsMismatchedTokens(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	vault := &spyVault{}
	x := m.executor(fixedClock{now: testNow}, vault, nil)

	req := scenarioRequest(m, nil)
	req.TokenOut = tokX
	_, err := x.ExecutePaths(ctx, req)
	assert.ErrorIs(t, err, domain.ErrIncorrectPath)
	assert.Empty(t, vault.in)

	req = scenarioRequest(m, nil)
	req.Plan = domain.Plan{}
	_, err = x.ExecutePaths(ctx, req)
	assert.ErrorIs(t, err, domain.ErrEmptyPlan)
}

func TestExecutePathsWrapsNative(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	vault := &spyVault{}
	wrapper := &spyWrapper{}
	x := m.executor(fixedClock{now: testNow}, vault, wrapper)

	plan := domain.PlanFromPath(m.path(venueCP1, domain.NativeMint, tokC, 1, 1))
	amount := units(2, 9)
	out, err := x.ExecutePaths(ctx, domain.ExecuteRequest{
		TokenIn:   domain.NativeMint,
		TokenOut:  tokC,
		AmountIn:  amount,
		Payer:     payer,
		Recipient: recv,
		Plan:      plan,
		Deadline:  testNow.Unix(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{amount.Dec()}, wrapper.wrapped)
	assert.Empty(t, wrapper.unwrapped)
	assert.Equal(t, domain.NativeMint, vault.in[0].token)
	assert.Equal(t, out.Dec(), vault.out[0].amount)

	_, err = m.executor(fixedClock{now: testNow}, vault, nil).ExecutePaths(ctx, domain.ExecuteRequest{
		TokenIn: domain.NativeMint, TokenOut: tokC, AmountIn: amount, Plan: plan, Deadline: testNow.Unix(),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
}

func TestExecutePathsUnwrapsNative(t *testing.T) {
	ctx := context.Background()
	m := newTestMarket()
	vault := &spyVault{}
	wrapper := &spyWrapper{}
	x := m.executor(fixedClock{now: testNow}, vault, wrapper)

	out, err := x.ExecutePaths(ctx, domain.ExecuteRequest{
		TokenIn:   tokC,
		TokenOut:  domain.NativeMint,
		AmountIn:  units(3, 6),
		Payer:     payer,
		Recipient: recv,
		Plan:      domain.PlanFromPath(m.path(venueCP2, tokC, domain.NativeMint, 2, 1)),
		Deadline:  testNow.Unix(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{out.Dec()}, wrapper.unwrapped)
	assert.Equal(t, domain.NativeMint, vault.out[0].token)
}
