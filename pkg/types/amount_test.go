package types

import "testing"

func TestAmount_StringRoundTrip(t *testing.T) {
	tests := []string{"0.00000000", "10.00000000", "0.00000001", "123456.78900000", "-5.50000000"}
	for _, s := range tests {
		a, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", s, err)
		}
		if a.String() != s {
			t.Errorf("roundtrip mismatch: got %s, want %s", a.String(), s)
		}
	}
}

func TestAmount_ParseShortForms(t *testing.T) {
	a, err := ParseAmount("10")
	if err != nil {
		t.Fatalf("ParseAmount: %v", err)
	}
	if a != NewAmountFromFloat(10) {
		t.Errorf("ParseAmount(10) = %d, want %d", a, NewAmountFromFloat(10))
	}

	b, err := ParseAmount("1.5")
	if err != nil {
		t.Fatalf("ParseAmount: %v", err)
	}
	if b.String() != "1.50000000" {
		t.Errorf("ParseAmount(1.5).String() = %s", b.String())
	}
}

func TestAmount_TooManyDecimals(t *testing.T) {
	if _, err := ParseAmount("1.123456789"); err == nil {
		t.Error("expected error for too many fractional digits")
	}
}

func TestAmount_JSONRoundTrip(t *testing.T) {
	a := NewAmountFromFloat(42.5)
	data, err := a.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var out Amount
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if out != a {
		t.Errorf("roundtrip mismatch: got %s, want %s", out, a)
	}
}
