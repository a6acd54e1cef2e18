package config

import (
	"fmt"

	"github.com/andrew-solarstorm/go-packages/common"
	"github.com/gagliardetto/solana-go"

	routecommon "github.com/hxuan190/route-aggregator/internal/common"
)

type AggregatorConfig struct {
	// DBPath is the path to the BoltDB file for pool persistence.
	// Default: "./data/route-aggregator.db"
	DBPath string

	// PersistenceEnabled controls whether pools are persisted to disk.
	// Default: true
	PersistenceEnabled bool

	// PersistInterval is how often changed pools are batch-saved (in seconds).
	// Default: 30
	PersistInterval int

	// CustodyAccount holds balances between hops during execution.
	CustodyAccount solana.PublicKey

	// ReceiptsDSN is the Postgres DSN for execution receipts. Empty keeps
	// receipts in memory.
	ReceiptsDSN string

	// DefaultDeadlineSecs is added to now when a swap request has no deadline.
	// Default: 60
	DefaultDeadlineSecs int
}

func (c *AggregatorConfig) Key() string {
	return AGGREGATOR_CONFIG_KEY
}

func (c *AggregatorConfig) Load() error {
	c.DBPath = common.GetEnvOrDefault("AGGREGATOR_DB_PATH", "./data/route-aggregator.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("AGGREGATOR_PERSISTENCE_ENABLED", "true") == "true"
	c.PersistInterval = common.GetEnvOrDefaultInt("AGGREGATOR_PERSIST_INTERVAL", 30)
	c.ReceiptsDSN = common.GetEnvOrDefault("AGGREGATOR_RECEIPTS_DSN", "")
	c.DefaultDeadlineSecs = common.GetEnvOrDefaultInt("AGGREGATOR_DEFAULT_DEADLINE_SECONDS", routecommon.DefaultDeadlineSecs)

	custody := common.GetEnvOrDefault("AGGREGATOR_CUSTODY_ACCOUNT", routecommon.DefaultCustodyAccount.String())
	pk, err := solana.PublicKeyFromBase58(custody)
	if err != nil {
		return fmt.Errorf("AGGREGATOR_CUSTODY_ACCOUNT: %w", err)
	}
	c.CustodyAccount = pk
	return c.Validate()
}

func (c *AggregatorConfig) Validate() error {
	if c.PersistenceEnabled && c.DBPath == "" {
		return fmt.Errorf("invalid aggregator config: empty db path")
	}
	if c.PersistInterval <= 0 {
		return fmt.Errorf("invalid aggregator config: persist interval %d", c.PersistInterval)
	}
	if c.DefaultDeadlineSecs <= 0 {
		return fmt.Errorf("invalid aggregator config: default deadline %d", c.DefaultDeadlineSecs)
	}
	return nil
}
