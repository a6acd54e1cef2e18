// Package ledger keeps per-account token balances for in-process execution.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type balanceKey struct {
	token solana.PublicKey
	owner solana.PublicKey
}

// Ledger is an in-memory token ledger. Custody is the account the executor
// holds intermediate balances in.
type Ledger struct {
	mu       sync.RWMutex
	balances map[balanceKey]*uint256.Int
	custody  solana.PublicKey
}

func NewLedger(custody solana.PublicKey) *Ledger {
	return &Ledger{
		balances: make(map[balanceKey]*uint256.Int),
		custody:  custody,
	}
}

func (l *Ledger) Custody() solana.PublicKey {
	return l.custody
}

func (l *Ledger) BalanceOf(_ context.Context, token, owner solana.PublicKey) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[balanceKey{token, owner}]; ok {
		return new(uint256.Int).Set(b), nil
	}
	return new(uint256.Int), nil
}

func (l *Ledger) Credit(_ context.Context, token, owner solana.PublicKey, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.credit(token, owner, amount)
}

func (l *Ledger) Debit(_ context.Context, token, owner solana.PublicKey, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debit(token, owner, amount)
}

func (l *Ledger) credit(token, owner solana.PublicKey, amount *uint256.Int) error {
	k := balanceKey{token, owner}
	cur, ok := l.balances[k]
	if !ok {
		cur = new(uint256.Int)
	}
	next, overflow := new(uint256.Int).AddOverflow(cur, amount)
	if overflow {
		return domain.ErrArithmeticOverflow
	}
	l.balances[k] = next
	return nil
}

func (l *Ledger) debit(token, owner solana.PublicKey, amount *uint256.Int) error {
	k := balanceKey{token, owner}
	cur, ok := l.balances[k]
	if !ok {
		cur = new(uint256.Int)
	}
	if cur.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, owner, cur.Dec(), domain.FormatToken(token), amount.Dec())
	}
	l.balances[k] = new(uint256.Int).Sub(cur, amount)
	return nil
}

// move debits from and credits to under one lock.
func (l *Ledger) move(token, from, to solana.PublicKey, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(token, from, amount); err != nil {
		return err
	}
	return l.credit(token, to, amount)
}

// TransferIn pulls amount of token from an account into custody.
func (l *Ledger) TransferIn(_ context.Context, token, from solana.PublicKey, amount *uint256.Int) error {
	return l.move(token, from, l.custody, amount)
}

// TransferOut pays amount of token from custody to an account.
func (l *Ledger) TransferOut(_ context.Context, token, to solana.PublicKey, amount *uint256.Int) error {
	return l.move(token, l.custody, to, amount)
}

// Wrap converts owner's native balance into the wrapped token.
func (l *Ledger) Wrap(_ context.Context, owner solana.PublicKey, amount *uint256.Int) error {
	return l.swapOwn(owner, domain.NativeMint, domain.WrappedNativeMint, amount)
}

// Unwrap converts owner's wrapped balance back into native.
func (l *Ledger) Unwrap(_ context.Context, owner solana.PublicKey, amount *uint256.Int) error {
	return l.swapOwn(owner, domain.WrappedNativeMint, domain.NativeMint, amount)
}

func (l *Ledger) swapOwn(owner, from, to solana.PublicKey, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(from, owner, amount); err != nil {
		return err
	}
	return l.credit(to, owner, amount)
}

// Settle takes amountIn of tokenIn from payer and gives amountOut of tokenOut
// to recipient. Pool reserves are tracked by the pool store.
func (l *Ledger) Settle(_ context.Context, payer, tokenIn solana.PublicKey, amountIn *uint256.Int, recipient, tokenOut solana.PublicKey, amountOut *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(tokenIn, payer, amountIn); err != nil {
		return err
	}
	if err := l.credit(tokenOut, recipient, amountOut); err != nil {
		// undo the debit so a failed settle leaves no trace
		_ = l.credit(tokenIn, payer, amountIn)
		return err
	}
	return nil
}

// Snapshot captures every balance and returns a function that restores them.
func (l *Ledger) Snapshot() func() {
	l.mu.RLock()
	saved := make(map[balanceKey]*uint256.Int, len(l.balances))
	for k, v := range l.balances {
		saved[k] = new(uint256.Int).Set(v)
	}
	l.mu.RUnlock()

	return func() {
		l.mu.Lock()
		l.balances = saved
		l.mu.Unlock()
	}
}
