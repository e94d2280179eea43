package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cenwadike/voip-staking/crypto"
)

// VaultAlias is the genesis allocation address that targets the contract's
// custody vault instead of a user account.
const VaultAlias = "vault"

// Validate checks the configuration for malformed fields. Genesis addresses
// must be either the vault alias or a well-formed bech32 address, and genesis
// amounts must be positive base-10 integers.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil config")
	}
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("config: RPCAddress is required")
	}
	for i, alloc := range c.Genesis {
		addr := strings.TrimSpace(alloc.Address)
		if addr == "" {
			return fmt.Errorf("config: genesis allocation %d has no address", i)
		}
		if addr != VaultAlias {
			if _, err := crypto.DecodeAddress(addr); err != nil {
				return fmt.Errorf("config: genesis allocation %d: %w", i, err)
			}
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(alloc.Amount), 10)
		if !ok || amount.Sign() <= 0 {
			return fmt.Errorf("config: genesis allocation %d has invalid amount %q", i, alloc.Amount)
		}
	}
	return nil
}
