package p2p

import "github.com/google/uuid"

// newMsgID generates the unique per-message ID used for flood-dedup
// (spec §4.6 "each message carries a unique msg_id").
func newMsgID() string {
	return uuid.NewString()
}
