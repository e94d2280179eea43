package state

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Record addresses are derived, never stored: every key is the keccak256 hash
// of a fixed seed plus (where applicable) the owner identity. Unrelated
// contracts hash different seeds, so the derivation is collision-free across
// deployments sharing a store, and unique per owner within one.
var (
	configSeed  = []byte("voip-staking/state")
	stakeSeed   = []byte("voip-staking/stake-info:")
	balanceSeed = []byte("voip-staking/balance:")
	vaultSeed   = []byte("voip-staking/vault")
	genesisSeed = []byte("voip-staking/genesis")
)

func genesisKey() []byte {
	return ethcrypto.Keccak256(genesisSeed)
}

func configKey() []byte {
	return ethcrypto.Keccak256(configSeed)
}

func stakeKey(owner [20]byte) []byte {
	buf := make([]byte, len(stakeSeed)+len(owner))
	copy(buf, stakeSeed)
	copy(buf[len(stakeSeed):], owner[:])
	return ethcrypto.Keccak256(buf)
}

func balanceKey(addr [20]byte) []byte {
	buf := make([]byte, len(balanceSeed)+len(addr))
	copy(buf, balanceSeed)
	copy(buf[len(balanceSeed):], addr[:])
	return ethcrypto.Keccak256(buf)
}

// VaultAddress derives the address holding the contract's custody balance.
// It has no known private key; only the engine moves funds out of it.
func VaultAddress() [20]byte {
	hash := ethcrypto.Keccak256(vaultSeed)
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}
