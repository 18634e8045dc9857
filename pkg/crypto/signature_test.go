package crypto

import (
	"bytes"
	"testing"
)

func TestGenerateKeyPair(t *testing.T) {
	key, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	pub := key.PublicKey()
	if len(pub) != 33 {
		t.Errorf("PublicKey() length = %d, want 33", len(pub))
	}

	ser := key.Serialize()
	if len(ser) != 32 {
		t.Errorf("Serialize() length = %d, want 32", len(ser))
	}
}

func TestGenerateKeyPair_Unique(t *testing.T) {
	k1, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	k2, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	if bytes.Equal(k1.Serialize(), k2.Serialize()) {
		t.Error("two generated keys should not be identical")
	}
}

func TestPrivateKeyFromBytes(t *testing.T) {
	original, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	restored, err := PrivateKeyFromBytes(original.Serialize())
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes() error: %v", err)
	}

	if !bytes.Equal(original.PublicKey(), restored.PublicKey()) {
		t.Error("restored key should have same public key")
	}
}

func TestPrivateKeyFromBytes_InvalidLength(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"too short", make([]byte, 16)},
		{"too long", make([]byte, 33)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PrivateKeyFromBytes(tt.data); err == nil {
				t.Errorf("PrivateKeyFromBytes(%d bytes) should have errored", len(tt.data))
			}
		})
	}
}

func TestSignAndVerify(t *testing.T) {
	key, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	hash := Sha256([]byte("a transaction body"))
	sig, err := key.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	if !Verify(key.PublicKey(), hash[:], sig) {
		t.Error("Verify() should accept a valid signature")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	key, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	other, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	hash := Sha256([]byte("payload"))
	sig, err := key.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	if Verify(other.PublicKey(), hash[:], sig) {
		t.Error("Verify() should reject signature against the wrong public key")
	}
}

func TestVerify_TamperedHash(t *testing.T) {
	key, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	hash := Sha256([]byte("payload"))
	sig, err := key.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	tampered := Sha256([]byte("different payload"))
	if Verify(key.PublicKey(), tampered[:], sig) {
		t.Error("Verify() should reject a signature over a different hash")
	}
}

func TestVerify_MalformedInputsDoNotPanic(t *testing.T) {
	if Verify([]byte("not a key"), make([]byte, 32), []byte("not a sig")) {
		t.Error("Verify() should return false for malformed input, not panic")
	}
}

func TestSign_WrongHashLength(t *testing.T) {
	key, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	if _, err := key.Sign([]byte("short")); err == nil {
		t.Error("Sign() should reject a non-32-byte hash")
	}
}

func TestAddressOf_Deterministic(t *testing.T) {
	key, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	a1 := AddressOf(key.PublicKey())
	a2 := AddressOf(key.PublicKey())
	if a1 != a2 {
		t.Errorf("AddressOf not deterministic: %s != %s", a1, a2)
	}
	if err := a1.Validate(); err != nil {
		t.Errorf("AddressOf produced invalid address: %v", err)
	}
}

func TestAddressOf_DifferentKeys(t *testing.T) {
	k1, _ := GenerateKeyPair()
	k2, _ := GenerateKeyPair()
	if AddressOf(k1.PublicKey()) == AddressOf(k2.PublicKey()) {
		t.Error("different public keys should derive different addresses")
	}
}
