package p2p

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"
)

func TestWriteReadEnvelope_RoundTrip(t *testing.T) {
	env, err := Encode(MsgPing, "node-a", 1700000000, PingPayload{Nonce: 7})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}

	decoded, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	if decoded.Type != MsgPing {
		t.Errorf("Type = %s, want %s", decoded.Type, MsgPing)
	}
	if decoded.SenderID != "node-a" {
		t.Errorf("SenderID = %s, want node-a", decoded.SenderID)
	}
	if decoded.MsgID == "" {
		t.Error("expected a non-empty msg_id")
	}

	var ping PingPayload
	if err := json.Unmarshal(decoded.Payload, &ping); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if ping.Nonce != 7 {
		t.Errorf("Nonce = %d, want 7", ping.Nonce)
	}
}

func TestReadEnvelope_RejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], MaxMessageSize+1)
	buf.Write(lenPrefix[:])

	if _, err := ReadEnvelope(&buf); err == nil {
		t.Error("expected an error for an oversized length prefix")
	}
}

func TestCompatibleProtocolVersion(t *testing.T) {
	cases := []struct {
		version string
		want    bool
	}{
		{"1.0.0", true},
		{"1.4.2", true},
		{"2.0.0", false},
		{"not-a-version", false},
	}
	for _, c := range cases {
		if got := compatibleProtocolVersion(c.version); got != c.want {
			t.Errorf("compatibleProtocolVersion(%q) = %v, want %v", c.version, got, c.want)
		}
	}
}
