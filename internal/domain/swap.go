package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

type ExecuteRequest struct {
	TokenIn      solana.PublicKey
	TokenOut     solana.PublicKey
	AmountIn     *uint256.Int
	Payer        solana.PublicKey
	Recipient    solana.PublicKey
	Plan         Plan
	Deadline     int64
	MinAmountOut *uint256.Int
}

type ExecutionResult struct {
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	PlanHash  string
	ReceiptID string
}

// ExecutionReceipt records one successful execution.
type ExecutionReceipt struct {
	ID           string    `json:"id"`
	PlanHash     string    `json:"planHash"`
	TokenIn      string    `json:"tokenIn"`
	TokenOut     string    `json:"tokenOut"`
	AmountIn     string    `json:"amountIn"`
	AmountOut    string    `json:"amountOut"`
	MinAmountOut string    `json:"minAmountOut"`
	Payer        string    `json:"payer"`
	Recipient    string    `json:"recipient"`
	ExecutedAt   time.Time `json:"executedAt"`
}

type ExecuteResponse struct {
	AmountIn  string `json:"amountIn" yaml:"amountIn"`
	AmountOut string `json:"amountOut" yaml:"amountOut"`
	PlanHash  string `json:"planHash" yaml:"planHash"`
	ReceiptID string `json:"receiptId,omitempty" yaml:"receiptId,omitempty"`
}

func (r *ExecutionResult) View() ExecuteResponse {
	return ExecuteResponse{
		AmountIn:  dec(r.AmountIn),
		AmountOut: dec(r.AmountOut),
		PlanHash:  r.PlanHash,
		ReceiptID: r.ReceiptID,
	}
}
