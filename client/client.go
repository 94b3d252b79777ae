// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/pion/logging"
	"github.com/webrtcstun/stun/stun"
)

// Client issues STUN requests and correlates their responses. A Client
// owns exactly one socket; concurrent RoundTrip calls are safe.
type Client struct {
	conn   net.PacketConn
	raddr  net.Addr
	config Config
	log    logging.LeveledLogger
	engine *transactionEngine

	closeOnce sync.Once
	closeCh   chan struct{}
}

// New creates a Client and starts its background read loop. Close must be
// called to release the socket.
func New(cfg Config) (*Client, error) {
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	raddr, err := net.ResolveUDPAddr("udp", cfg.STUNServerAddr)
	if err != nil {
		return nil, fmt.Errorf("client: resolving %s: %w", cfg.STUNServerAddr, err)
	}

	conn, err := cfg.Net.ListenPacket("udp4", "0.0.0.0:0")
	if err != nil {
		return nil, fmt.Errorf("client: listening: %w", err)
	}

	log := cfg.LoggerFactory.NewLogger("client")

	c := &Client{
		conn:    conn,
		raddr:   raddr,
		config:  cfg,
		log:     log,
		engine:  newTransactionEngine(log),
		closeCh: make(chan struct{}),
	}

	go c.readLoop()

	return c, nil
}

// Close stops the read loop and closes the underlying socket. A second
// call returns errAlreadyClosed instead of silently succeeding.
func (c *Client) Close() error {
	var err error
	closedNow := false

	c.closeOnce.Do(func() {
		closedNow = true
		close(c.closeCh)
		err = c.conn.Close()
	})

	if !closedNow {
		return errAlreadyClosed
	}

	return err
}

func (c *Client) readLoop() {
	buf := make([]byte, 1500)

	for {
		n, _, err := c.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-c.closeCh:
			default:
				c.log.Debugf("client: read loop exiting: %v", err)
			}

			return
		}

		if !stun.IsMessage(buf[:n], false) {
			continue
		}

		resp, err := stun.Parse(append([]byte(nil), buf[:n]...))
		if err != nil {
			c.log.Debugf("client: dropping unparseable datagram: %v", err)

			continue
		}

		c.engine.dispatch(resp)
	}
}

// RoundTrip sends req and waits for its matched response, retransmitting
// per the configured schedule. If req has no transaction id yet, one is
// generated.
func (c *Client) RoundTrip(ctx context.Context, req *stun.Request) (*stun.Response, error) {
	if c.config.Software != "" && !hasAttr(req, stun.AttrSoftware) {
		if err := req.Add(stun.Software(c.config.Software)); err != nil {
			return nil, err
		}
	}

	if c.config.Key != nil && !hasAttr(req, stun.AttrMessageIntegrity) {
		if err := req.Add(stun.MessageIntegrity(c.config.Key)); err != nil {
			return nil, err
		}
	}

	if !req.HasTransactionID() {
		if err := req.SetTransactionID(c.randomTransactionID()); err != nil {
			return nil, err
		}
	}

	id := req.TransactionID()

	send := func() error {
		b, err := req.Encode()
		if err != nil {
			return err
		}

		_, err = c.conn.WriteTo(b, c.raddr)

		return err
	}

	return c.engine.roundTrip(ctx, id, c.config.RTO, c.config.Rc, c.config.Rm, c.config.Rand, send)
}

func hasAttr(r *stun.Request, typ stun.AttrType) bool {
	_, ok := r.Get(typ)

	return ok
}

// randomTransactionID draws a transaction id from the configured Rand
// source rather than stun.Request's implicit crypto/rand fallback, so
// Config.Rand actually drives transaction-id generation.
func (c *Client) randomTransactionID() []byte {
	id := make([]byte, stun.TransactionIDSize)
	for i := range id {
		id[i] = byte(c.config.Rand.Intn(256))
	}

	return id
}

// Binding issues a Binding request and returns the reflexive address from
// XOR-MAPPED-ADDRESS, falling back to MAPPED-ADDRESS.
func (c *Client) Binding(ctx context.Context) (*net.UDPAddr, error) {
	req := stun.NewRequest()
	req.SetType(stun.NewType(stun.MethodBinding, stun.ClassRequest))

	resp, err := c.RoundTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Class() == stun.ClassErrorResponse {
		var ec stun.ErrorCodeAttribute
		if getErr := ec.GetFrom(resp); getErr == nil {
			return nil, fmt.Errorf("client: server returned error %d %s", ec.Code, ec.Reason)
		}

		return nil, fmt.Errorf("client: server returned an error response")
	}

	var xor stun.XORMappedAddress
	if err := xor.GetFrom(resp); err == nil {
		return &net.UDPAddr{IP: xor.IP, Port: xor.Port}, nil
	}

	var mapped stun.MappedAddress
	if err := mapped.GetFrom(resp); err == nil {
		return &net.UDPAddr{IP: mapped.IP, Port: mapped.Port}, nil
	}

	return nil, fmt.Errorf("client: response carried neither XOR-MAPPED-ADDRESS nor MAPPED-ADDRESS")
}
