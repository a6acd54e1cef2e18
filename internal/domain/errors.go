package domain

import (
	"errors"
	"fmt"
)

var (
	ErrZeroAmount                = errors.New("zero amount")
	ErrZeroAmountIn              = fmt.Errorf("%w in", ErrZeroAmount)
	ErrUnknownVenue              = errors.New("unknown venue")
	ErrQuoterNotProvided         = errors.New("quoter not provided")
	ErrSumOfSharesMustBePositive = errors.New("sum of shares must be positive")
	ErrIncorrectPath             = errors.New("incorrect path")
	ErrDeadlinePassed            = errors.New("deadline passed")
	ErrSlippageToleranceExceeded = errors.New("slippage tolerance exceeded")
	ErrArithmeticOverflow        = errors.New("arithmetic overflow")
	ErrDivisionByZero            = errors.New("division by zero")

	ErrInvalidAncillaryData  = errors.New("invalid ancillary data")
	ErrUnsupportedOperation  = errors.New("unsupported operation")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrUnknownToken          = errors.New("unknown token")
	ErrEmptyPlan             = errors.New("empty plan")
	ErrInvalidPool           = errors.New("invalid pool")
)

// PlanError locates a failure inside a plan. Indices are -1 when the failure
// is not tied to that level.
type PlanError struct {
	MegaRoute int
	Hop       int
	Path      int
	Err       error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("megaRoute=%d hop=%d path=%d: %v", e.MegaRoute, e.Hop, e.Path, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

func asPlanError(err error) *PlanError {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe
	}
	return &PlanError{MegaRoute: -1, Hop: -1, Path: -1, Err: err}
}

// AtPath tags err with the hop and path index that produced it.
func AtPath(err error, hop, path int) error {
	if err == nil {
		return nil
	}
	pe := asPlanError(err)
	if pe.Hop < 0 {
		pe.Hop = hop
	}
	if pe.Path < 0 {
		pe.Path = path
	}
	return pe
}

// AtHop tags err with a hop index only.
func AtHop(err error, hop int) error {
	if err == nil {
		return nil
	}
	pe := asPlanError(err)
	if pe.Hop < 0 {
		pe.Hop = hop
	}
	return pe
}

// AtMegaRoute tags err with the mega-route index.
func AtMegaRoute(err error, idx int) error {
	if err == nil {
		return nil
	}
	pe := asPlanError(err)
	if pe.MegaRoute < 0 {
		pe.MegaRoute = idx
	}
	return pe
}

// Locate returns err as a *PlanError, wrapping it with unset indices if needed.
func Locate(err error) *PlanError {
	if err == nil {
		return nil
	}
	return asPlanError(err)
}
