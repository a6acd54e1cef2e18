package ledger

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

func acct(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = 0x1E
	k[31] = b
	return k
}

var (
	custody = acct(1)
	alice   = acct(2)
	bob     = acct(3)
	usdc    = acct(10)
	wbtc    = acct(11)
)

func balance(t *testing.T, l *Ledger, token, owner solana.PublicKey) uint64 {
	t.Helper()
	b, err := l.BalanceOf(context.Background(), token, owner)
	require.NoError(t, err)
	return b.Uint64()
}

func TestLedgerTransfers(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(custody)
	require.NoError(t, l.Credit(ctx, usdc, alice, uint256.NewInt(100)))

	require.NoError(t, l.TransferIn(ctx, usdc, alice, uint256.NewInt(60)))
	assert.Equal(t, uint64(40), balance(t, l, usdc, alice))
	assert.Equal(t, uint64(60), balance(t, l, usdc, custody))

	require.NoError(t, l.TransferOut(ctx, usdc, bob, uint256.NewInt(25)))
	assert.Equal(t, uint64(35), balance(t, l, usdc, custody))
	assert.Equal(t, uint64(25), balance(t, l, usdc, bob))

	err := l.TransferIn(ctx, usdc, alice, uint256.NewInt(41))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(40), balance(t, l, usdc, alice))
	assert.Zero(t, balance(t, l, wbtc, alice))
}

func TestLedgerWrapUnwrap(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(custody)
	require.NoError(t, l.Credit(ctx, domain.NativeMint, custody, uint256.NewInt(7)))

	require.NoError(t, l.Wrap(ctx, custody, uint256.NewInt(5)))
	assert.Equal(t, uint64(2), balance(t, l, domain.NativeMint, custody))
	assert.Equal(t, uint64(5), balance(t, l, domain.WrappedNativeMint, custody))

	require.NoError(t, l.Unwrap(ctx, custody, uint256.NewInt(5)))
	assert.Equal(t, uint64(7), balance(t, l, domain.NativeMint, custody))
	assert.ErrorIs(t, l.Unwrap(ctx, custody, uint256.NewInt(1)), ErrInsufficientBalance)
}

func TestLedgerSettle(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(custody)
	require.NoError(t, l.Credit(ctx, usdc, custody, uint256.NewInt(10)))

	require.NoError(t, l.Settle(ctx, custody, usdc, uint256.NewInt(10), custody, wbtc, uint256.NewInt(3)))
	assert.Zero(t, balance(t, l, usdc, custody))
	assert.Equal(t, uint64(3), balance(t, l, wbtc, custody))

	err := l.Settle(ctx, custody, usdc, uint256.NewInt(1), bob, wbtc, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Zero(t, balance(t, l, wbtc, bob))

	huge := new(uint256.Int).SetAllOne()
	require.NoError(t, l.Credit(ctx, usdc, alice, uint256.NewInt(1)))
	err = l.Settle(ctx, alice, usdc, uint256.NewInt(1), custody, wbtc, huge)
	assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)
	assert.Equal(t, uint64(1), balance(t, l, usdc, alice), "failed settle restores the payer")
}

func TestLedgerSnapshot(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(custody)
	require.NoError(t, l.Credit(ctx, usdc, alice, uint256.NewInt(5)))

	restore := l.Snapshot()
	require.NoError(t, l.TransferIn(ctx, usdc, alice, uint256.NewInt(5)))
	require.NoError(t, l.Credit(ctx, wbtc, bob, uint256.NewInt(9)))
	restore()

	assert.Equal(t, uint64(5), balance(t, l, usdc, alice))
	assert.Zero(t, balance(t, l, usdc, custody))
	assert.Zero(t, balance(t, l, wbtc, bob))
}
