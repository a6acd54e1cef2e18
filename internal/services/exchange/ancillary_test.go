package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

func TestAncillaryRoundTrip(t *testing.T) {
	cp := ConstantProductData{Pool: poolP, FeeBps: 30}
	data, err := EncodeAncillary(&cp)
	require.NoError(t, err)
	assert.Equal(t, domain.FamilyConstantProduct, data.Family())
	assert.Equal(t, AncillaryVersion, data[1])

	var gotCP ConstantProductData
	require.NoError(t, DecodeAncillary(data, &gotCP))
	assert.Equal(t, cp, gotCP)

	st := StableSwapData{Pool: poolP, IndexIn: 1, IndexOut: 0, FeeBps: 4}
	var gotST StableSwapData
	require.NoError(t, DecodeAncillary(mustEncode(st), &gotST))
	assert.Equal(t, st, gotST)

	wp := WeightedPoolData{Pool: poolP, WeightIn: 80, WeightOut: 20, FeeBps: 25}
	var gotWP WeightedPoolData
	require.NoError(t, DecodeAncillary(mustEncode(wp), &gotWP))
	assert.Equal(t, wp, gotWP)

	mc := MulticallData{Calls: []Call{{Target: tokA, CallData: []byte{1, 2, 3}, Value: 7}}}
	var gotMC MulticallData
	require.NoError(t, DecodeAncillary(mustEncode(mc), &gotMC))
	assert.Equal(t, mc, gotMC)
}

func TestAncillaryRejectsMalformed(t *testing.T) {
	good := mustEncode(ConstantProductData{Pool: poolP, FeeBps: 30})

	wrongVersion := append(domain.AncillaryData{}, good...)
	wrongVersion[1] = 9
	trailing := append(append(domain.AncillaryData{}, good...), 0xFF)

	tests := []struct {
		name string
		data domain.AncillaryData
	}{
		{"empty", nil},
		{"short", domain.AncillaryData{byte(domain.FamilyConstantProduct)}},
		{"wrong family", mustEncode(ConcentratedData{Pool: poolP})},
		{"wrong version", wrongVersion},
		{"trailing bytes", trailing},
		{"truncated", good[:10]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out ConstantProductData
			assert.ErrorIs(t, DecodeAncillary(tt.data, &out), domain.ErrInvalidAncillaryData)
		})
	}

	_, err := EncodeAncillary(42)
	assert.ErrorIs(t, err, domain.ErrInvalidAncillaryData)
}

func TestFamilyDecodersCheckPayload(t *testing.T) {
	_, err := decodeConstantProduct(mustEncode(ConstantProductData{Pool: poolP, FeeBps: 10_000}))
	assert.ErrorIs(t, err, domain.ErrInvalidAncillaryData)

	_, err = decodeStableSwap(mustEncode(StableSwapData{Pool: poolP, IndexIn: 1, IndexOut: 1}))
	assert.ErrorIs(t, err, domain.ErrInvalidAncillaryData)

	_, err = decodeWeighted(mustEncode(WeightedPoolData{Pool: poolP, WeightIn: 0, WeightOut: 1}))
	assert.ErrorIs(t, err, domain.ErrInvalidAncillaryData)

	_, err = decodeMulticall(mustEncode(MulticallData{}))
	assert.ErrorIs(t, err, domain.ErrInvalidAncillaryData)
}
