package main

import (
	pkgcommon "github.com/andrew-solarstorm/go-packages/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/config"
	"github.com/hxuan190/route-aggregator/internal/http"
)

// @title Route Aggregator API
// @version 1.0-beta
// @description Split-route swap aggregation over constant-product, stable-swap, weighted, concentrated-liquidity and multicall venues.
// @description
// @description ## - Features
// @description - **Split Routes**: Each hop divides its input across venues by integer shares
// @description - **Mega Routes**: Several independent routes between the same token pair, weighted by shares
// @description - **Forward and Reverse Quotes**: Exact-input outputs and exact-output input estimates
// @description - **All-or-Nothing Execution**: A failed plan leaves pools and balances unchanged
// @description - **Receipts**: Every successful execution is recorded with its plan fingerprint
// @description
// @description ## - Usage Tips
// @description - Use smallest token units for every amount
// @description - The token string "native" stands for the chain's native token and is wrapped on entry
// @description - Ancillary data is base58 on the wire; `routectl encode` produces it
// @description - Default slippage is 50 bps (0.5%)
// @description - **Rate Limit**: 10 requests/second (burst: 20)
// @description
// @BasePath /
// @schemes https http
// @tag.name quote
// @tag.description Forward and reverse quotes over a caller-supplied plan
// @tag.name swap
// @tag.description Execute a plan against the engine's pools and ledger
// @tag.name pools
// @tag.description In-process pools and registered venues
// @tag.name balances
// @tag.description Ledger balances
// @tag.name admin
// @tag.description Pool and balance administration

func main() {
	// .env is optional; the process environment is enough in containers.
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}
	zerolog.SetGlobalLevel(common.ParseLogLevel(pkgcommon.GetEnvOrDefault("LOG_LEVEL", "INFO")))
	common.InitRuntime()

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.RPCConfig{},
		&config.AggregatorConfig{},
		&config.VenueConfig{},
	)

	// di container
	dic, err := container.New(
		// config
		conf,

		// services
		&aggregator.Service{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
