package config

import (
	"fmt"
	"net/url"

	"github.com/andrew-solarstorm/go-packages/common"
	"github.com/gagliardetto/solana-go"

	routecommon "github.com/hxuan190/route-aggregator/internal/common"
)

// RPCConfig points at the Solana RPC node used for concentrated-liquidity
// pool state and mint decimals. RPCUrl may be empty when no such venue is
// configured.
type RPCConfig struct {
	RPCUrl    string
	RPCApiKey string

	// VortexProgram owns the concentrated-liquidity pools the Vortex quoter reads.
	VortexProgram solana.PublicKey
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.RPCUrl = common.GetEnvOrDefault("RPC_URL", "")
	r.RPCApiKey = common.GetEnvOrDefault("RPC_KEY", "")

	program := common.GetEnvOrDefault("VORTEX_PROGRAM_ID", routecommon.VortexProgramID.String())
	pk, err := solana.PublicKeyFromBase58(program)
	if err != nil {
		return fmt.Errorf("VORTEX_PROGRAM_ID: %w", err)
	}
	r.VortexProgram = pk
	return r.Validate()
}

func (r *RPCConfig) Validate() error {
	if r.RPCUrl == "" {
		return nil
	}
	u, err := url.Parse(r.RPCUrl)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid rpc config: RPC_URL %q is not an http(s) url", r.RPCUrl)
	}
	return nil
}

func (r *RPCConfig) Enabled() bool {
	return r.RPCUrl != ""
}

// Endpoint returns RPCUrl with the api key attached as the api-key query
// parameter when one is set.
func (r *RPCConfig) Endpoint() string {
	if r.RPCApiKey == "" {
		return r.RPCUrl
	}
	u, err := url.Parse(r.RPCUrl)
	if err != nil {
		return r.RPCUrl
	}
	q := u.Query()
	q.Set("api-key", r.RPCApiKey)
	u.RawQuery = q.Encode()
	return u.String()
}
