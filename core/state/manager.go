package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/cenwadike/voip-staking/core/errors"
	"github.com/cenwadike/voip-staking/native/staking"
	"github.com/cenwadike/voip-staking/storage"
)

// Manager reads and writes the staking module's records over a key-value
// store. All mutations land in an in-memory overlay first; nothing reaches
// the backing store until Commit. Discard throws the overlay away. This gives
// each operation all-or-nothing visibility: a failed operation commits
// nothing, a successful one commits everything.
//
// Manager is not safe for concurrent use; the node serializes operations.
type Manager struct {
	db      storage.Database
	overlay map[string][]byte
}

// NewManager creates a state manager operating over the provided store.
func NewManager(db storage.Database) *Manager {
	return &Manager{
		db:      db,
		overlay: make(map[string][]byte),
	}
}

func (m *Manager) get(key []byte) ([]byte, error) {
	if value, ok := m.overlay[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return m.db.Get(key)
}

func (m *Manager) put(key, value []byte) {
	m.overlay[string(key)] = append([]byte(nil), value...)
}

// Commit flushes every staged write to the backing store as one atomic batch
// and clears the overlay. A failed batch write leaves the store exactly as it
// was: the overlay is never partially committed.
func (m *Manager) Commit() error {
	if len(m.overlay) == 0 {
		return nil
	}
	batch := new(storage.Batch)
	for key, value := range m.overlay {
		batch.Put([]byte(key), value)
	}
	if err := m.db.Write(batch); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	m.overlay = make(map[string][]byte)
	return nil
}

// Discard drops all staged writes without touching the backing store.
func (m *Manager) Discard() {
	m.overlay = make(map[string][]byte)
}

// Dirty reports whether the overlay holds uncommitted writes.
func (m *Manager) Dirty() bool {
	return len(m.overlay) > 0
}

// --- Config record ---

type storedConfig struct {
	Admin  [20]byte
	Paused bool
}

// StakingConfig loads the singleton config record. The boolean is false when
// the contract has not been initialized.
func (m *Manager) StakingConfig() (*staking.Config, bool, error) {
	raw, err := m.get(configKey())
	if err != nil {
		return nil, false, fmt.Errorf("state: load config: %w", err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}
	var stored storedConfig
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("state: decode config: %w", err)
	}
	return &staking.Config{Admin: stored.Admin, Paused: stored.Paused}, true, nil
}

// PutStakingConfig stages the config record.
func (m *Manager) PutStakingConfig(cfg *staking.Config) error {
	if cfg == nil {
		return fmt.Errorf("state: nil config")
	}
	encoded, err := rlp.EncodeToBytes(&storedConfig{Admin: cfg.Admin, Paused: cfg.Paused})
	if err != nil {
		return fmt.Errorf("state: encode config: %w", err)
	}
	m.put(configKey(), encoded)
	return nil
}

// --- Stake records ---

type storedStakeRecord struct {
	Owner          [20]byte
	Principal      *big.Int
	Tier           uint8
	StartTimestamp uint64
	ClaimedReward  *big.Int
	Active         bool
}

// StakeRecord loads the record for an owner. The boolean is false when the
// owner has never staked; callers must treat that differently from a record
// with zero principal.
func (m *Manager) StakeRecord(owner [20]byte) (*staking.StakeRecord, bool, error) {
	raw, err := m.get(stakeKey(owner))
	if err != nil {
		return nil, false, fmt.Errorf("state: load stake record: %w", err)
	}
	if len(raw) == 0 {
		return nil, false, nil
	}
	var stored storedStakeRecord
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("state: decode stake record: %w", err)
	}
	record := &staking.StakeRecord{
		Owner:          stored.Owner,
		Principal:      stored.Principal,
		Tier:           staking.DurationTier(stored.Tier),
		StartTimestamp: stored.StartTimestamp,
		ClaimedReward:  stored.ClaimedReward,
		Active:         stored.Active,
	}
	if record.Principal == nil {
		record.Principal = big.NewInt(0)
	}
	if record.ClaimedReward == nil {
		record.ClaimedReward = big.NewInt(0)
	}
	return record, true, nil
}

// PutStakeRecord stages the record under its owner-derived key.
func (m *Manager) PutStakeRecord(record *staking.StakeRecord) error {
	if record == nil {
		return fmt.Errorf("state: nil stake record")
	}
	stored := &storedStakeRecord{
		Owner:          record.Owner,
		Principal:      record.Principal,
		Tier:           uint8(record.Tier),
		StartTimestamp: record.StartTimestamp,
		ClaimedReward:  record.ClaimedReward,
		Active:         record.Active,
	}
	if stored.Principal == nil {
		stored.Principal = big.NewInt(0)
	}
	if stored.ClaimedReward == nil {
		stored.ClaimedReward = big.NewInt(0)
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return fmt.Errorf("state: encode stake record: %w", err)
	}
	m.put(stakeKey(record.Owner), encoded)
	return nil
}

// --- Token ledger (custody adapter) ---

// BalanceOf returns the ledger balance for an address; absent accounts hold
// zero.
func (m *Manager) BalanceOf(addr [20]byte) (*big.Int, error) {
	raw, err := m.get(balanceKey(addr))
	if err != nil {
		return nil, fmt.Errorf("state: load balance: %w", err)
	}
	if len(raw) == 0 {
		return big.NewInt(0), nil
	}
	balance := new(big.Int)
	if err := rlp.DecodeBytes(raw, balance); err != nil {
		return nil, fmt.Errorf("state: decode balance: %w", err)
	}
	return balance, nil
}

func (m *Manager) setBalance(addr [20]byte, balance *big.Int) error {
	encoded, err := rlp.EncodeToBytes(balance)
	if err != nil {
		return fmt.Errorf("state: encode balance: %w", err)
	}
	m.put(balanceKey(addr), encoded)
	return nil
}

// Transfer moves amount from one ledger account to another. It either moves
// the full amount or nothing: a source shortfall fails with
// errors.ErrInsufficientFunds before any balance is staged.
func (m *Manager) Transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.ErrInvalidAmount
	}
	fromBalance, err := m.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return errors.ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	toBalance, err := m.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := m.setBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return m.setBalance(to, new(big.Int).Add(toBalance, amount))
}

// GenesisApplied reports whether genesis allocations have been minted.
func (m *Manager) GenesisApplied() (bool, error) {
	raw, err := m.get(genesisKey())
	if err != nil {
		return false, fmt.Errorf("state: load genesis marker: %w", err)
	}
	return len(raw) > 0, nil
}

// SetGenesisApplied stages the one-time genesis marker.
func (m *Manager) SetGenesisApplied() {
	m.put(genesisKey(), []byte{1})
}

// Mint credits freshly issued tokens to an address. Used only for genesis
// allocations; the staking engine itself never mints.
func (m *Manager) Mint(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.ErrInvalidAmount
	}
	balance, err := m.BalanceOf(addr)
	if err != nil {
		return err
	}
	return m.setBalance(addr, new(big.Int).Add(balance, amount))
}
