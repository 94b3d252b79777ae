// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package server

import (
	"net"

	"github.com/webrtcstun/stun/stun"
)

// GenerateAuthKey derives the long-term credential key a stored user
// record should hold, so passwords never need to be kept in plaintext.
func GenerateAuthKey(username, realm, password string) []byte {
	return stun.NewLongTermIntegrity(username, realm, password)
}

// authResult is what authenticate decided: either a verified integrity key
// to sign the reply with, or that the caller already sent an error/
// challenge response and dispatch should stop.
type authResult struct {
	key        []byte
	authorized bool
}

// authenticate enforces the long-term credential mechanism ahead of a
// handler, RFC 5389 section 10.2: challenge with REALM+NONCE if
// MESSAGE-INTEGRITY is absent, re-challenge with a fresh nonce if it is
// stale, reject with 400 if NONCE, REALM or USERNAME is missing, and reject
// with 401 if AuthHandler does not know the user or the integrity check
// fails. It is only called when an AuthHandler is configured.
func (s *Server) authenticate(req *stun.Response, conn net.PacketConn, srcAddr net.Addr) (authResult, error) {
	respondWithNonce := func(code stun.ErrorCode) (authResult, error) {
		nonce, err := s.nonces.Generate(srcAddr)
		if err != nil {
			return authResult{}, err
		}

		return authResult{}, s.sendError(conn, srcAddr, req, code,
			stun.Nonce(nonce), stun.Realm(s.config.Realm))
	}

	if !req.Contains(stun.AttrMessageIntegrity) {
		return respondWithNonce(stun.CodeUnauthorized)
	}

	var nonce stun.Nonce
	if err := nonce.GetFrom(req); err != nil {
		return authResult{}, s.sendError(conn, srcAddr, req, stun.CodeBadRequest)
	}

	if err := s.nonces.Validate(string(nonce), srcAddr); err != nil {
		return respondWithNonce(stun.CodeStaleNonce)
	}

	var realm stun.Realm
	var username stun.Username

	if err := realm.GetFrom(req); err != nil {
		return authResult{}, s.sendError(conn, srcAddr, req, stun.CodeBadRequest)
	}

	if err := username.GetFrom(req); err != nil {
		return authResult{}, s.sendError(conn, srcAddr, req, stun.CodeBadRequest)
	}

	key, ok := s.config.AuthHandler(string(username), string(realm), srcAddr)
	if !ok {
		s.log.Debugf("server: %v: %q from %v", errNoSuchUser, username, srcAddr)

		return authResult{}, s.sendError(conn, srcAddr, req, stun.CodeUnauthorized)
	}

	if err := stun.MessageIntegrity(key).Check(req); err != nil {
		return authResult{}, s.sendError(conn, srcAddr, req, stun.CodeUnauthorized)
	}

	return authResult{key: key, authorized: true}, nil
}
