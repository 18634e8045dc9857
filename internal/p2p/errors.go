package p2p

import "errors"

var (
	// ErrIncompatibleProtocol is returned when a peer's HELLO advertises a
	// protocol major version we don't speak (spec §4.6).
	ErrIncompatibleProtocol = errors.New("p2p: incompatible protocol version")
	// ErrBanned is returned when a connection attempt or inbound message
	// comes from a peer ID currently banned.
	ErrBanned = errors.New("p2p: peer is banned")
	// ErrHandshakeTimeout names a peer that fails to complete HELLO within
	// HandshakeTimeout. The handshake enforces the limit with a connection
	// deadline and returns the resulting read error, not this value.
	ErrHandshakeTimeout = errors.New("p2p: handshake timeout")
	// ErrRateLimited names a peer that exceeds its message or byte rate
	// limit. The read loop drops such messages without returning this value.
	ErrRateLimited = errors.New("p2p: peer rate limit exceeded")
	// ErrUnknownMessageType names a MessageType outside the closed set. The
	// dispatch switch drops such messages and records an offense against the
	// sender; it does not return this value.
	ErrUnknownMessageType = errors.New("p2p: unknown message type")
	// ErrNotConnected is returned when an operation addresses a peer ID
	// with no live connection.
	ErrNotConnected = errors.New("p2p: peer not connected")
)
