// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package server implements the STUN server façade: a handler table keyed
// by method, with a built-in Binding handler that reflects the peer
// address back in XOR-MAPPED-ADDRESS, and an optional long-term credential
// challenge (REALM/NONCE/MESSAGE-INTEGRITY) ahead of any handler.
package server

import (
	"net"

	"github.com/pion/logging"
	"github.com/webrtcstun/stun/stun"
)

// AuthHandler resolves a username (and the realm it was challenged with)
// to the key used to verify MESSAGE-INTEGRITY. Returning ok=false rejects
// the request with 401.
type AuthHandler func(username, realm string, srcAddr net.Addr) (key []byte, ok bool)

// Handler answers one parsed request, writing any reply itself via conn.
// key is the verified long-term credential key when AuthHandler challenged
// and authenticated the request, and nil otherwise; a handler that wants
// its success response integrity-protected per RFC 5389 section 10.2.2
// must add stun.MessageIntegrity(key) itself before encoding.
type Handler func(conn net.PacketConn, srcAddr net.Addr, req *stun.Response, key []byte) error

// Config configures a Server.
type Config struct {
	// Conn is the socket the server reads requests from and writes
	// responses to. Required.
	Conn net.PacketConn

	// Realm is advertised in 401 challenges. Required when AuthHandler is
	// set.
	Realm string

	// AuthHandler, if non-nil, turns on long-term credential
	// authentication (RFC 5389 section 10.2) ahead of every registered
	// handler, Binding included.
	AuthHandler AuthHandler

	// Handlers lets callers register additional methods beyond the
	// built-in Binding handler.
	Handlers map[stun.Method]Handler

	// LoggerFactory builds the leveled logger handed to the dispatch loop.
	LoggerFactory logging.LoggerFactory
}

func (c *Config) setDefaults() error {
	if c.Conn == nil {
		return errBadConfig
	}

	if c.AuthHandler != nil && c.Realm == "" {
		return errBadConfig
	}

	if c.LoggerFactory == nil {
		c.LoggerFactory = logging.NewDefaultLoggerFactory()
	}

	if c.Handlers == nil {
		c.Handlers = map[stun.Method]Handler{}
	}

	return nil
}
