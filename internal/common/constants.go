// Package common contains common constants and variables used across services
package common

import "github.com/gagliardetto/solana-go"

var (
	VortexProgramID = solana.MustPublicKeyFromBase58("vnt1u7PzorND5JjweFWmDawKe2hLWoTwHU6QKz6XX98")

	// DefaultCustodyAccount holds balances between hops while a plan executes.
	DefaultCustodyAccount = solana.MustPublicKeyFromBase58("Custody1111111111111111111111111111111111111")
)

const (
	DefaultTokenCacheSize = 4096
	DefaultDeadlineSecs   = 60
)
