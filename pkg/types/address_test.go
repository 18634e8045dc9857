package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAddress_Validate(t *testing.T) {
	tests := []struct {
		name    string
		addr    Address
		wantErr bool
	}{
		{"coinbase sentinel", CoinbaseAddress, false},
		{"genesis sentinel", GenesisAddress, false},
		{"valid 40 hex", Address(strings.Repeat("a", 40)), false},
		{"too short", Address(strings.Repeat("a", 39)), true},
		{"too long", Address(strings.Repeat("a", 41)), true},
		{"uppercase hex rejected", Address(strings.Repeat("A", 40)), true},
		{"empty", Address(""), true},
		{"non-hex", Address(strings.Repeat("z", 40)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.addr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) err = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestParseAddress_Normalizes(t *testing.T) {
	upper := strings.Repeat("AB", 20)
	got, err := ParseAddress(upper)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if got != Address(strings.ToLower(upper)) {
		t.Errorf("ParseAddress did not lowercase: got %s", got)
	}
}

func TestAddress_IsSentinel(t *testing.T) {
	if !CoinbaseAddress.IsSentinel() {
		t.Error("COINBASE should be a sentinel")
	}
	if !GenesisAddress.IsSentinel() {
		t.Error("GENESIS should be a sentinel")
	}
	if Address(strings.Repeat("a", 40)).IsSentinel() {
		t.Error("regular address should not be a sentinel")
	}
}

func TestAddress_JSONRoundTrip(t *testing.T) {
	a := Address(strings.Repeat("c", 40))
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out Address
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != a {
		t.Errorf("roundtrip mismatch: got %s, want %s", out, a)
	}
}
