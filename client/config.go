// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package client implements the STUN client façade: issuing a Binding
// request (or any other built message) and recovering its reflexive
// transport address, with the request/response transaction engine (C7)
// handling retransmission and correlation.
package client

import (
	"fmt"
	"time"

	"github.com/pion/logging"
	"github.com/pion/randutil"
	"github.com/pion/transport/v3"
	"github.com/pion/transport/v3/stdnet"
)

// Default retransmission schedule: the request is sent at most Rc times,
// RTO doubles after each send, and after the Rc-th send the client waits
// Rm*initial RTO before abandoning. Defaults give ~39.5s total per RFC 5389
// Appendix B.
const (
	DefaultRTO     = 500 * time.Millisecond
	DefaultRc      = 7
	DefaultRm      = 16
)

// Config configures a Client.
type Config struct {
	// STUNServerAddr is the address ("host:port") of the STUN server this
	// client talks to.
	STUNServerAddr string

	// Net abstracts socket creation so tests can run against a virtual
	// network (pion/transport/v3/vnet) instead of a real one.
	Net transport.Net

	// LoggerFactory builds the leveled logger handed to the transaction
	// engine. Defaults to logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory

	// Software is an optional SOFTWARE attribute value added to every
	// outgoing request.
	Software string

	// Key, if non-nil, is used to append MESSAGE-INTEGRITY to every
	// outgoing request.
	Key []byte

	// RTO, Rc, Rm override the retransmission schedule.
	RTO time.Duration
	Rc  int
	Rm  int

	// Rand supplies randomness for transaction id generation.
	Rand randutil.MathRandomGenerator
}

func (c *Config) setDefaults() error {
	if c.STUNServerAddr == "" {
		return fmt.Errorf("%w: STUNServerAddr is required", errBadConfig)
	}

	if c.Net == nil {
		n, err := stdnet.NewNet()
		if err != nil {
			return fmt.Errorf("failed to create network: %w", err)
		}

		c.Net = n
	}

	if c.LoggerFactory == nil {
		c.LoggerFactory = logging.NewDefaultLoggerFactory()
	}

	if c.RTO == 0 {
		c.RTO = DefaultRTO
	}

	if c.Rc == 0 {
		c.Rc = DefaultRc
	}

	if c.Rm == 0 {
		c.Rm = DefaultRm
	}

	if c.Rand == nil {
		c.Rand = randutil.NewMathRandomGenerator()
	}

	return nil
}
