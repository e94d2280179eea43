package core

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/cenwadike/voip-staking/core/events"
	"github.com/cenwadike/voip-staking/core/state"
	"github.com/cenwadike/voip-staking/core/types"
	"github.com/cenwadike/voip-staking/native/staking"
	"github.com/cenwadike/voip-staking/storage"
)

const recentEventLimit = 256

// GenesisAllocation names a ledger balance minted exactly once at first boot.
// This stands in for the external funding tooling: the custody vault and any
// pre-funded users are seeded here.
type GenesisAllocation struct {
	Address [20]byte
	Amount  *big.Int
}

// Node binds the staking engine to persistent state and applies every
// operation as a single atomic unit: all record mutations and custody
// transfers of one operation commit together or not at all. Operations are
// serialized under a mutex, so two calls racing on the same record cannot
// interleave half-applied state.
type Node struct {
	mu      sync.Mutex
	manager *state.Manager
	engine  *staking.Engine
	logger  *slog.Logger

	recent  []types.Event
	pending []types.Event
}

// NewNode creates a node over the provided store. The custody vault address
// is derived from the module's fixed seed.
func NewNode(db storage.Database, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	manager := state.NewManager(db)
	engine := staking.NewEngine(state.VaultAddress())
	engine.SetState(manager)
	node := &Node{
		manager: manager,
		engine:  engine,
		logger:  logger,
	}
	engine.SetEmitter(node)
	return node
}

// Engine exposes the underlying engine, primarily so tests and the daemon
// can pin the time source.
func (n *Node) Engine() *staking.Engine { return n.engine }

// Emit implements events.Emitter. Events are staged per operation and reach
// the retained history only after the operation's state commits; a rolled-back
// operation publishes nothing.
func (n *Node) Emit(evt events.Event) {
	payloader, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	payload := payloader.Event()
	if payload == nil {
		return
	}
	n.pending = append(n.pending, *payload)
}

// RecentEvents returns a copy of the retained event history.
func (n *Node) RecentEvents() []types.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]types.Event, len(n.recent))
	copy(out, n.recent)
	return out
}

// apply runs op against the state overlay and commits its writes only when
// it succeeds. Any failure, including a commit failure, leaves the backing
// store untouched and drops the operation's staged events.
func (n *Node) apply(name string, op func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = n.pending[:0]
	if err := op(); err != nil {
		n.manager.Discard()
		n.pending = n.pending[:0]
		n.logger.Debug("staking operation rejected", "op", name, "err", err)
		return err
	}
	if err := n.manager.Commit(); err != nil {
		n.manager.Discard()
		n.pending = n.pending[:0]
		return fmt.Errorf("core: commit %s: %w", name, err)
	}
	n.publishPending()
	return nil
}

// publishPending moves the committed operation's events into the retained
// history. Caller holds the mutex.
func (n *Node) publishPending() {
	for i := range n.pending {
		evt := n.pending[i]
		n.recent = append(n.recent, evt)
		n.logger.Info("staking event", "type", evt.Type, "attributes", evt.Attributes)
	}
	if len(n.recent) > recentEventLimit {
		n.recent = n.recent[len(n.recent)-recentEventLimit:]
	}
	n.pending = n.pending[:0]
}

// ApplyGenesis mints the configured allocations exactly once. Subsequent
// boots see the genesis marker and skip minting.
func (n *Node) ApplyGenesis(allocs []GenesisAllocation) error {
	return n.apply("genesis", func() error {
		done, err := n.manager.GenesisApplied()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		for _, alloc := range allocs {
			if err := n.manager.Mint(alloc.Address, alloc.Amount); err != nil {
				return fmt.Errorf("core: genesis mint: %w", err)
			}
		}
		n.manager.SetGenesisApplied()
		return nil
	})
}

// Initialize creates the contract config with the caller as admin.
func (n *Node) Initialize(admin [20]byte) error {
	return n.apply("initialize", func() error {
		return n.engine.Initialize(admin)
	})
}

// Pause halts new staking activity. Admin only.
func (n *Node) Pause(caller [20]byte) error {
	return n.apply("pause", func() error {
		return n.engine.Pause(caller)
	})
}

// Unpause resumes staking activity. Admin only.
func (n *Node) Unpause(caller [20]byte) error {
	return n.apply("unpause", func() error {
		return n.engine.Unpause(caller)
	})
}

// Stake locks amount of the caller's tokens for the chosen duration tier.
func (n *Node) Stake(caller [20]byte, amount *big.Int, tier staking.DurationTier) (*staking.StakeRecord, error) {
	var record *staking.StakeRecord
	err := n.apply("stake", func() error {
		var opErr error
		record, opErr = n.engine.Stake(caller, amount, tier)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Claim pays out the caller's accrued, unclaimed reward.
func (n *Node) Claim(caller [20]byte) (*big.Int, error) {
	var paid *big.Int
	err := n.apply("claim", func() error {
		var opErr error
		paid, opErr = n.engine.Claim(caller)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// Withdraw settles the final reward and returns principal for a matured
// stake.
func (n *Node) Withdraw(caller [20]byte) (*staking.WithdrawReceipt, error) {
	var receipt *staking.WithdrawReceipt
	err := n.apply("withdraw", func() error {
		var opErr error
		receipt, opErr = n.engine.Withdraw(caller)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// PositionOf reports the owner's stake record and reward standing.
func (n *Node) PositionOf(owner [20]byte) (*staking.Position, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.PositionOf(owner)
}

// Config reports the contract configuration.
func (n *Node) Config() (*staking.Config, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.ConfigOf()
}

// BalanceOf reports the ledger balance of an address.
func (n *Node) BalanceOf(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.manager.BalanceOf(addr)
}

// VaultAddress returns the custody vault address.
func (n *Node) VaultAddress() [20]byte {
	return n.engine.Vault()
}
