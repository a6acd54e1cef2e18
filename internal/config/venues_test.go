package config

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

func TestParseVenues(t *testing.T) {
	venues, err := ParseVenues(" 1:raydium:constant-product, 2:vortex:clmm,3:curve:stable ,")
	require.NoError(t, err)
	assert.Equal(t, []VenueEntry{
		{ID: 1, Name: "raydium", Family: domain.FamilyConstantProduct},
		{ID: 2, Name: "vortex", Family: domain.FamilyConcentratedLiquidity},
		{ID: 3, Name: "curve", Family: domain.FamilyStableSwap},
	}, venues)

	empty, err := ParseVenues("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"1:raydium", "x:raydium:cp", "1:raydium:orderbook", "4294967296:a:cp"} {
		_, err := ParseVenues(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTokenDecimals(t *testing.T) {
	usdc := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	got, err := ParseTokenDecimals(usdc.String() + ":6,native:9")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), got[usdc])
	assert.Equal(t, uint8(9), got[domain.NativeMint])

	for _, bad := range []string{"nodecimals", usdc.String() + ":256", "notakey:6"} {
		_, err := ParseTokenDecimals(bad)
		assert.Error(t, err, bad)
	}
}

func TestVenueConfigValidate(t *testing.T) {
	c := &VenueConfig{Venues: []VenueEntry{{ID: 1, Family: domain.FamilyConstantProduct}, {ID: 1, Family: domain.FamilyStableSwap}}}
	assert.Error(t, c.Validate())

	c.Venues = c.Venues[:1]
	assert.NoError(t, c.Validate())
	assert.True(t, c.HasFamily(domain.FamilyConstantProduct))
	assert.False(t, c.HasFamily(domain.FamilyConcentratedLiquidity))
}
