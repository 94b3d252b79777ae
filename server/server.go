// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package server

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/pion/logging"
	"github.com/webrtcstun/stun/stun"
)

// Server answers STUN requests on one socket. The zero value is not
// usable; construct with New.
type Server struct {
	config Config
	log    logging.LeveledLogger
	nonces *NonceHash

	closeOnce sync.Once
	closeCh   chan struct{}
}

// New validates cfg and returns a Server ready for ListenAndServe.
func New(cfg Config) (*Server, error) {
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	s := &Server{
		config:  cfg,
		log:     cfg.LoggerFactory.NewLogger("server"),
		closeCh: make(chan struct{}),
	}

	if cfg.AuthHandler != nil {
		nonces, err := NewNonceHash()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}

		s.nonces = nonces
	}

	return s, nil
}

// Close stops ListenAndServe and closes the configured connection.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.config.Conn.Close()
	})

	return err
}

// ListenAndServe reads datagrams until Close is called or Conn returns an
// unrecoverable error. Parse failures on server ingress are dropped
// silently.
func (s *Server) ListenAndServe() error {
	buf := make([]byte, 1500)

	for {
		n, srcAddr, err := s.config.Conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-s.closeCh:
				return nil
			default:
				if errors.Is(err, net.ErrClosed) {
					return nil
				}

				return err
			}
		}

		s.handleDatagram(append([]byte(nil), buf[:n]...), srcAddr)
	}
}

func (s *Server) handleDatagram(b []byte, srcAddr net.Addr) {
	if !stun.IsMessage(b, false) {
		return
	}

	req, err := stun.Parse(b)
	if err != nil {
		s.log.Debugf("server: dropping unparseable datagram from %v: %v", srcAddr, err)

		return
	}

	if req.Class() != stun.ClassRequest {
		s.log.Debugf("server: dropping non-request class message from %v", srcAddr)

		return
	}

	if unknown := req.CheckUnknownAttributes(recognizedAttrs); len(unknown) > 0 {
		if sendErr := s.sendError(s.config.Conn, srcAddr, req, stun.CodeUnknownAttribute, stun.UnknownAttributes(unknown)); sendErr != nil {
			s.log.Warnf("server: failed to send 420 to %v: %v", srcAddr, sendErr)
		}

		return
	}

	handler, ok := s.config.Handlers[req.Method()]
	if !ok && req.Method() == stun.MethodBinding {
		handler = s.handleBinding
	}

	if handler == nil {
		s.log.Debugf("server: no handler for method %s from %v", req.Method(), srcAddr)

		return
	}

	var key []byte

	if s.config.AuthHandler != nil {
		result, err := s.authenticate(req, s.config.Conn, srcAddr)
		if err != nil {
			s.log.Warnf("server: auth challenge to %v failed: %v", srcAddr, err)

			return
		}

		if !result.authorized {
			return
		}

		key = result.key
	}

	if err := handler(s.config.Conn, srcAddr, req, key); err != nil {
		s.log.Warnf("server: handler for %s failed for %v: %v", req.Method(), srcAddr, err)
	}
}

// recognizedAttrs is every comprehension-required attribute this package
// knows how to decode; anything comprehension-required outside this set
// triggers a 420 Unknown Attribute response.
var recognizedAttrs = map[stun.AttrType]bool{
	stun.AttrMappedAddress:     true,
	stun.AttrUsername:         true,
	stun.AttrMessageIntegrity: true,
	stun.AttrErrorCode:        true,
	stun.AttrUnknownAttributes: true,
	stun.AttrRealm:             true,
	stun.AttrNonce:             true,
	stun.AttrXORMappedAddress:  true,
	stun.AttrPriority:          true,
	stun.AttrUseCandidate:      true,
}

// handleBinding is the built-in default: respond with the peer's address
// in XOR-MAPPED-ADDRESS. When the request was authenticated, the response
// carries MESSAGE-INTEGRITY keyed by the same long-term credential, per
// RFC 5389 section 10.2.2.
func (s *Server) handleBinding(conn net.PacketConn, srcAddr net.Addr, req *stun.Response, key []byte) error {
	udpAddr, ok := srcAddr.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("server: unsupported address type %T", srcAddr)
	}

	resp := stun.NewRequest()
	resp.SetType(stun.NewType(stun.MethodBinding, stun.ClassSuccessResponse))

	if err := resp.SetTransactionID(req.TransactionID()); err != nil {
		return err
	}

	if err := resp.Add(stun.XORMappedAddress{IP: udpAddr.IP, Port: udpAddr.Port}); err != nil {
		return err
	}

	if key != nil {
		if err := resp.Add(stun.MessageIntegrity(key)); err != nil {
			return err
		}
	}

	return s.send(conn, srcAddr, resp)
}

func (s *Server) sendError(conn net.PacketConn, srcAddr net.Addr, req *stun.Response, code stun.ErrorCode, extra ...stun.Setter) error {
	resp := stun.NewRequest()
	resp.SetType(stun.NewType(req.Method(), stun.ClassErrorResponse))

	if err := resp.SetTransactionID(req.TransactionID()); err != nil {
		return err
	}

	if err := resp.Add(stun.ErrorCodeAttribute{Code: code}); err != nil {
		return err
	}

	for _, setter := range extra {
		if err := resp.Add(setter); err != nil {
			return err
		}
	}

	return s.send(conn, srcAddr, resp)
}

func (s *Server) send(conn net.PacketConn, dst net.Addr, resp *stun.Request) error {
	b, err := resp.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", errFailedToSendResponse, err) //nolint:errorlint
	}

	if _, err := conn.WriteTo(b, dst); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil
		}

		return fmt.Errorf("%w: %v", errFailedToSendResponse, err) //nolint:errorlint
	}

	return nil
}
