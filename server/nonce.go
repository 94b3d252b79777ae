// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"time"
)

const (
	nonceLifetime  = time.Hour
	nonceLength    = 40
	nonceKeyLength = 64
)

// NonceHash issues and validates the NONCE values the server challenges
// unauthenticated requests with (RFC 5389 section 15.8): an HMAC-signed
// timestamp, so staleness can be checked without server-side state.
//
// Unlike a TURN relay's nonce, which only ever has to survive a single
// allocation's lifetime on a connection the server already trusts, a STUN
// Binding server hands nonces to arbitrary, unauthenticated peers whose
// whole purpose is to have their source address reflected back to them.
// That makes a captured nonce replayable from a spoofed or NATted source
// unless the signature also covers where it was handed out, so the source
// address feeds into the HMAC alongside the timestamp.
type NonceHash struct {
	key []byte
}

// NewNonceHash creates a NonceHash with a fresh random signing key.
func NewNonceHash() (*NonceHash, error) {
	key := make([]byte, nonceKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	return &NonceHash{key}, nil
}

// Generate returns a freshly timestamped nonce signed for srcAddr.
func (n *NonceHash) Generate(srcAddr net.Addr) (string, error) {
	nonce := make([]byte, 8, nonceLength)
	binary.BigEndian.PutUint64(nonce, uint64(time.Now().UnixMilli()))

	hash := hmac.New(sha256.New, n.key)
	if _, err := hash.Write(nonce[:8]); err != nil {
		return "", fmt.Errorf("%w: %v", errFailedToGenerateNonce, err) //nolint:errorlint
	}
	if _, err := hash.Write([]byte(srcAddr.String())); err != nil {
		return "", fmt.Errorf("%w: %v", errFailedToGenerateNonce, err) //nolint:errorlint
	}
	nonce = hash.Sum(nonce)

	return hex.EncodeToString(nonce), nil
}

// Validate checks that nonce was signed by this NonceHash for srcAddr and
// has not exceeded nonceLifetime; a stale nonce should be re-challenged
// with 438, and a nonce presented from a different address than it was
// issued to is rejected the same as an unsigned one.
func (n *NonceHash) Validate(nonce string, srcAddr net.Addr) error {
	b, err := hex.DecodeString(nonce)
	if err != nil || len(b) != nonceLength {
		return fmt.Errorf("%w: %v", errInvalidNonce, err) //nolint:errorlint
	}

	if ts := time.UnixMilli(int64(binary.BigEndian.Uint64(b))); time.Since(ts) > nonceLifetime {
		return errInvalidNonce
	}

	hash := hmac.New(sha256.New, n.key)
	if _, err = hash.Write(b[:8]); err != nil {
		return fmt.Errorf("%w: %v", errInvalidNonce, err) //nolint:errorlint
	}
	if _, err = hash.Write([]byte(srcAddr.String())); err != nil {
		return fmt.Errorf("%w: %v", errInvalidNonce, err) //nolint:errorlint
	}

	if !hmac.Equal(b[8:], hash.Sum(nil)) {
		return errInvalidNonce
	}

	return nil
}
