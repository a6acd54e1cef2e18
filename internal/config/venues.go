package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

type VenueEntry struct {
	ID     domain.VenueID
	Name   string
	Family domain.VenueFamily
}

// VenueConfig lists the venues to register and static token decimals.
//
//	VENUES=1:raydium:constant-product,2:vortex:concentrated
//	TOKEN_DECIMALS=EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v:6
type VenueConfig struct {
	Venues        []VenueEntry
	TokenDecimals map[solana.PublicKey]uint8
}

func (c *VenueConfig) Key() string {
	return VENUE_CONFIG_KEY
}

func (c *VenueConfig) Load() error {
	venues, err := ParseVenues(os.Getenv("VENUES"))
	if err != nil {
		return err
	}
	decimals, err := ParseTokenDecimals(os.Getenv("TOKEN_DECIMALS"))
	if err != nil {
		return err
	}
	c.Venues = venues
	c.TokenDecimals = decimals
	return c.Validate()
}

func (c *VenueConfig) Validate() error {
	seen := make(map[domain.VenueID]struct{}, len(c.Venues))
	for _, v := range c.Venues {
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("invalid venue config: duplicate venue id %d", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

// HasFamily reports whether any configured venue belongs to f.
func (c *VenueConfig) HasFamily(f domain.VenueFamily) bool {
	for _, v := range c.Venues {
		if v.Family == f {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ParseVenues(raw string) ([]VenueEntry, error) {
	var out []VenueEntry
	for _, item := range splitList(raw) {
		parts := strings.Split(item, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("VENUES: %q is not id:name:family", item)
		}
		id, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("VENUES: venue id %q: %w", parts[0], err)
		}
		family, err := domain.ParseVenueFamily(parts[2])
		if err != nil {
			return nil, fmt.Errorf("VENUES: %w", err)
		}
		out = append(out, VenueEntry{ID: domain.VenueID(id), Name: parts[1], Family: family})
	}
	return out, nil
}

func ParseTokenDecimals(raw string) (map[solana.PublicKey]uint8, error) {
	out := make(map[solana.PublicKey]uint8)
	for _, item := range splitList(raw) {
		i := strings.LastIndex(item, ":")
		if i <= 0 {
			return nil, fmt.Errorf("TOKEN_DECIMALS: %q is not mint:decimals", item)
		}
		mint, err := domain.ParseToken(item[:i])
		if err != nil {
			return nil, fmt.Errorf("TOKEN_DECIMALS: mint %q: %w", item[:i], err)
		}
		d, err := strconv.ParseUint(item[i+1:], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_DECIMALS: decimals %q: %w", item[i+1:], err)
		}
		out[mint] = uint8(d)
	}
	return out, nil
}
