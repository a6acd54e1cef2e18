package router

import (
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/wad"
)

// SplitByShares divides amount proportionally to shares. Each part is
// amount*share/total rounded down; the rounding remainder goes to the
// left-most largest share so the parts always sum to amount.
func SplitByShares(amount *uint256.Int, shares []uint64) ([]*uint256.Int, error) {
	total := new(uint256.Int)
	largest := 0
	for i, s := range shares {
		total.AddUint64(total, s)
		if s > shares[largest] {
			largest = i
		}
	}
	if total.IsZero() {
		return nil, domain.ErrSumOfSharesMustBePositive
	}

	parts := make([]*uint256.Int, len(shares))
	allocated := new(uint256.Int)
	share := wad.GetU256()
	defer wad.PutU256(share)
	for i, s := range shares {
		part, err := wad.MulDiv(amount, share.SetUint64(s), total)
		if err != nil {
			return nil, err
		}
		parts[i] = part
		allocated.Add(allocated, part)
	}
	parts[largest].Add(parts[largest], new(uint256.Int).Sub(amount, allocated))
	return parts, nil
}

func hopShares(hop domain.HopGroup) []uint64 {
	shares := make([]uint64, len(hop.Paths))
	for i, p := range hop.Paths {
		shares[i] = p.Shares
	}
	return shares
}

func megaRouteShares(megaRoutes []domain.MegaRoute) []uint64 {
	shares := make([]uint64, len(megaRoutes))
	for i, mr := range megaRoutes {
		shares[i] = mr.Shares
	}
	return shares
}
