package p2p

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ProtocolVersion is the protocol version this node advertises (spec §6
// environment constants).
const ProtocolVersion = "1.0.0"

// HandshakeTimeout bounds how long a peer has to complete HELLO (spec
// §4.6).
const HandshakeTimeout = 10 * time.Second

// HelloPayload is the HELLO message body exchanged on connect (spec
// §4.6).
type HelloPayload struct {
	NodeID          string `json:"node_id"`
	Host            string `json:"host"`
	Port            int    `json:"port"`
	ProtocolVersion string `json:"protocol_version"`
	ChainHeight     uint64 `json:"chain_height"`
}

// majorVersion extracts the leading dot-separated component of a semantic
// version string, e.g. "1.0.0" -> 1.
func majorVersion(v string) (int, error) {
	parts := strings.SplitN(v, ".", 2)
	return strconv.Atoi(parts[0])
}

// compatibleProtocolVersion reports whether a peer's advertised protocol
// version is acceptable: its major version must equal ours (spec §4.6
// "Peer is added iff major(protocol_version) == 1").
func compatibleProtocolVersion(peerVersion string) bool {
	ourMajor, err := majorVersion(ProtocolVersion)
	if err != nil {
		return false
	}
	peerMajor, err := majorVersion(peerVersion)
	if err != nil {
		return false
	}
	return peerMajor == ourMajor
}

func validateHello(h HelloPayload) error {
	if h.NodeID == "" {
		return fmt.Errorf("p2p: handshake: empty node_id")
	}
	if !compatibleProtocolVersion(h.ProtocolVersion) {
		return fmt.Errorf("%w: peer=%s local=%s", ErrIncompatibleProtocol, h.ProtocolVersion, ProtocolVersion)
	}
	return nil
}

func (n *Node) localHello() (HelloPayload, error) {
	host, portStr, err := net.SplitHostPort(n.addr)
	if err != nil {
		host, portStr = n.cfg.ListenAddr, fmt.Sprintf("%d", n.cfg.Port)
	}
	port, _ := strconv.Atoi(portStr)
	height := uint64(0)
	if n.handlers.ChainInfo != nil {
		height = n.handlers.ChainInfo().Height
	}
	return HelloPayload{
		NodeID:          n.id,
		Host:            host,
		Port:            port,
		ProtocolVersion: ProtocolVersion,
		ChainHeight:     height,
	}, nil
}

// serverHandshake handles an inbound connection: read the peer's HELLO,
// validate it, reply with our own, and construct the peerState.
func (n *Node) serverHandshake(conn net.Conn) (*peerState, error) {
	conn.SetDeadline(time.Now().Add(HandshakeTimeout))
	defer conn.SetDeadline(time.Time{})

	env, err := ReadEnvelope(conn)
	if err != nil {
		return nil, fmt.Errorf("p2p: read hello: %w", err)
	}
	if env.Type != MsgHello {
		return nil, fmt.Errorf("p2p: expected HELLO, got %s", env.Type)
	}
	var hello HelloPayload
	if err := json.Unmarshal(env.Payload, &hello); err != nil {
		return nil, fmt.Errorf("p2p: decode hello: %w", err)
	}
	if err := validateHello(hello); err != nil {
		if n.banMgr != nil {
			n.banMgr.RecordOffense(hello.NodeID, PenaltyHandshakeFail, "incompatible protocol version")
		}
		return nil, err
	}
	if n.banMgr != nil && n.banMgr.IsBanned(hello.NodeID) {
		return nil, ErrBanned
	}

	ourHello, err := n.localHello()
	if err != nil {
		return nil, err
	}
	reply, err := Encode(MsgHello, n.id, n.now(), ourHello)
	if err != nil {
		return nil, err
	}
	if err := WriteEnvelope(conn, reply); err != nil {
		return nil, fmt.Errorf("p2p: send hello reply: %w", err)
	}

	p := newPeerState(hello.NodeID, conn, false)
	if hello.Host != "" && hello.Port != 0 {
		p.addr = fmt.Sprintf("%s:%d", hello.Host, hello.Port)
	}
	p.mu.Lock()
	p.protocolVersion = hello.ProtocolVersion
	p.height = hello.ChainHeight
	p.handshakeDone = true
	p.mu.Unlock()
	return p, nil
}

// clientHandshake handles an outbound connection: send our HELLO first,
// then read and validate the peer's reply.
func (n *Node) clientHandshake(conn net.Conn, addr string) (*peerState, error) {
	conn.SetDeadline(time.Now().Add(HandshakeTimeout))
	defer conn.SetDeadline(time.Time{})

	ourHello, err := n.localHello()
	if err != nil {
		return nil, err
	}
	env, err := Encode(MsgHello, n.id, n.now(), ourHello)
	if err != nil {
		return nil, err
	}
	if err := WriteEnvelope(conn, env); err != nil {
		return nil, fmt.Errorf("p2p: send hello: %w", err)
	}

	reply, err := ReadEnvelope(conn)
	if err != nil {
		return nil, fmt.Errorf("p2p: read hello reply: %w", err)
	}
	if reply.Type != MsgHello {
		return nil, fmt.Errorf("p2p: expected HELLO reply, got %s", reply.Type)
	}
	var hello HelloPayload
	if err := json.Unmarshal(reply.Payload, &hello); err != nil {
		return nil, fmt.Errorf("p2p: decode hello reply: %w", err)
	}
	if err := validateHello(hello); err != nil {
		return nil, err
	}

	p := newPeerState(hello.NodeID, conn, true)
	p.addr = addr
	p.mu.Lock()
	p.protocolVersion = hello.ProtocolVersion
	p.height = hello.ChainHeight
	p.handshakeDone = true
	p.mu.Unlock()
	return p, nil
}
