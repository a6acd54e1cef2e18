package domain

import (
	"fmt"
	"strings"
)

type VenueID uint32

type VenueFamily uint8

const (
	FamilyUnknown VenueFamily = iota
	FamilyConstantProduct
	FamilyConcentratedLiquidity
	FamilyStableSwap
	FamilyWeightedPool
	FamilyGenericMulticall
)

func (f VenueFamily) String() string {
	switch f {
	case FamilyConstantProduct:
		return "constant-product"
	case FamilyConcentratedLiquidity:
		return "concentrated"
	case FamilyStableSwap:
		return "stable"
	case FamilyWeightedPool:
		return "weighted"
	case FamilyGenericMulticall:
		return "multicall"
	default:
		return "unknown"
	}
}

// InProcess reports whether the family is priced from pool state held by the
// engine rather than by an external quoter or dispatcher.
func (f VenueFamily) InProcess() bool {
	switch f {
	case FamilyConstantProduct, FamilyStableSwap, FamilyWeightedPool:
		return true
	}
	return false
}

func ParseVenueFamily(s string) (VenueFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant-product", "cp", "constant_product":
		return FamilyConstantProduct, nil
	case "concentrated", "cl", "concentrated-liquidity", "clmm":
		return FamilyConcentratedLiquidity, nil
	case "stable", "stable-swap", "stableswap":
		return FamilyStableSwap, nil
	case "weighted", "weighted-pool":
		return FamilyWeightedPool, nil
	case "multicall", "generic-multicall":
		return FamilyGenericMulticall, nil
	}
	return FamilyUnknown, fmt.Errorf("unknown venue family %q", s)
}
