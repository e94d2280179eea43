package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cenwadike/voip-staking/crypto"
)

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != "127.0.0.1:8645" {
		t.Fatalf("default rpc address %q", cfg.RPCAddress)
	}
	if cfg.NetworkName != "voip-local" {
		t.Fatalf("default network name %q", cfg.NetworkName)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not persisted: %v", err)
	}
	if _, err := os.Stat(cfg.AdminKeystorePath); err != nil {
		t.Fatalf("admin keystore not created: %v", err)
	}
	if _, err := crypto.LoadFromKeystore(cfg.AdminKeystorePath, ""); err != nil {
		t.Fatalf("generated keystore unreadable: %v", err)
	}

	// A second load must reuse the persisted file and keystore.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AdminKeystorePath != cfg.AdminKeystorePath {
		t.Fatalf("keystore path changed on reload: %q != %q", reloaded.AdminKeystorePath, cfg.AdminKeystorePath)
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("RPCAddress = \"0.0.0.0:9000\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAddress != "0.0.0.0:9000" {
		t.Fatalf("rpc address %q", cfg.RPCAddress)
	}
	if cfg.NetworkName != "voip-local" {
		t.Fatalf("network name not defaulted: %q", cfg.NetworkName)
	}
	if cfg.DataDir == "" {
		t.Fatal("data dir not defaulted")
	}
}

func TestValidateGenesis(t *testing.T) {
	raw := make([]byte, crypto.AddressLength)
	raw[0] = 0x42
	good := crypto.MustNewAddress(crypto.VoipPrefix, raw).String()

	cases := []struct {
		name    string
		alloc   GenesisAlloc
		wantErr bool
	}{
		{"vault alias", GenesisAlloc{Address: VaultAlias, Amount: "1000000"}, false},
		{"bech32 address", GenesisAlloc{Address: good, Amount: "500"}, false},
		{"bad address", GenesisAlloc{Address: "bogus", Amount: "500"}, true},
		{"zero amount", GenesisAlloc{Address: good, Amount: "0"}, true},
		{"negative amount", GenesisAlloc{Address: good, Amount: "-1"}, true},
		{"malformed amount", GenesisAlloc{Address: good, Amount: "1e6"}, true},
	}
	for _, tc := range cases {
		cfg := &Config{
			RPCAddress: "127.0.0.1:8645",
			Genesis:    []GenesisAlloc{tc.alloc},
		}
		err := cfg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestValidateRequiresRPCAddress(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty RPC address")
	}
}
