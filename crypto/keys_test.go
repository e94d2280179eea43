package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, AddressLength)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr, err := NewAddress(VoipPrefix, raw)
	if err != nil {
		t.Fatalf("new address: %v", err)
	}
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(VoipPrefix)+"1") {
		t.Fatalf("encoded address %q missing prefix", encoded)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), raw) {
		t.Fatalf("round trip mismatch: %x != %x", decoded.Bytes(), raw)
	}
	if !decoded.Equal(addr) {
		t.Fatalf("decoded address not equal to original")
	}
}

func TestNewAddressRejectsBadLength(t *testing.T) {
	if _, err := NewAddress(VoipPrefix, make([]byte, 19)); err == nil {
		t.Fatal("expected error for short address")
	}
	if _, err := NewAddress(VoipPrefix, make([]byte, 21)); err == nil {
		t.Fatal("expected error for long address")
	}
}

func TestDecodeAddressRejectsWrongPrefix(t *testing.T) {
	other := MustNewAddress("cosmos", make([]byte, AddressLength))
	if _, err := DecodeAddress(other.String()); err == nil {
		t.Fatal("expected prefix rejection")
	}
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatal("expected bech32 rejection")
	}
}

func TestKeyDerivesStableAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !restored.PubKey().Address().Equal(key.PubKey().Address()) {
		t.Fatal("restored key derives a different address")
	}
	if got := key.PubKey().Address().Prefix(); got != VoipPrefix {
		t.Fatalf("derived address prefix %q", got)
	}
}
