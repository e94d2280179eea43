package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/cenwadike/voip-staking/config"
	"github.com/cenwadike/voip-staking/core"
	corerrors "github.com/cenwadike/voip-staking/core/errors"
	"github.com/cenwadike/voip-staking/core/state"
	"github.com/cenwadike/voip-staking/crypto"
	"github.com/cenwadike/voip-staking/observability/logging"
	"github.com/cenwadike/voip-staking/rpc"
	"github.com/cenwadike/voip-staking/storage"
)

const adminPassEnv = "VOIP_ADMIN_PASS"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("VOIP_ENV"))
	logger := logging.Setup("voipd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	node := core.NewNode(db, logger)

	allocs, err := genesisAllocations(cfg)
	if err != nil {
		logger.Error("invalid genesis allocations", slog.Any("error", err))
		os.Exit(1)
	}
	if err := node.ApplyGenesis(allocs); err != nil {
		logger.Error("failed to apply genesis", slog.Any("error", err))
		os.Exit(1)
	}

	if err := ensureInitialized(node, cfg, logger); err != nil {
		logger.Error("failed to initialize contract", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(node, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func genesisAllocations(cfg *config.Config) ([]core.GenesisAllocation, error) {
	allocs := make([]core.GenesisAllocation, 0, len(cfg.Genesis))
	for _, entry := range cfg.Genesis {
		amount, ok := new(big.Int).SetString(strings.TrimSpace(entry.Amount), 10)
		if !ok || amount.Sign() <= 0 {
			return nil, fmt.Errorf("invalid genesis amount %q", entry.Amount)
		}
		var addr [20]byte
		if strings.TrimSpace(entry.Address) == config.VaultAlias {
			addr = state.VaultAddress()
		} else {
			decoded, err := crypto.DecodeAddress(strings.TrimSpace(entry.Address))
			if err != nil {
				return nil, err
			}
			addr = decoded.Array()
		}
		allocs = append(allocs, core.GenesisAllocation{Address: addr, Amount: amount})
	}
	return allocs, nil
}

// ensureInitialized creates the contract config on first boot using the admin
// keystore identity. Later boots see the existing config and leave it alone.
func ensureInitialized(node *core.Node, cfg *config.Config, logger *slog.Logger) error {
	if _, err := node.Config(); err == nil {
		return nil
	} else if !errors.Is(err, corerrors.ErrNotInitialized) {
		return err
	}
	key, err := crypto.LoadFromKeystore(cfg.AdminKeystorePath, os.Getenv(adminPassEnv))
	if err != nil {
		return fmt.Errorf("load admin keystore: %w", err)
	}
	admin := key.PubKey().Address()
	if err := node.Initialize(admin.Array()); err != nil {
		return err
	}
	logger.Info("staking contract initialized", "admin", admin.String())
	return nil
}
