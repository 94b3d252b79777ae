// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import "errors"

// Codec-level errors, returned to the immediate caller without retry: they
// indicate either malformed input or programmer misuse.
var (
	ErrTruncatedMessage                     = errors.New("stun: truncated message")
	ErrBadMagicCookie                       = errors.New("stun: bad magic cookie")
	ErrBadAttributeLength                   = errors.New("stun: bad attribute length")
	ErrDuplicateAttribute                   = errors.New("stun: attribute already exists")
	ErrAttributeNotFound                    = errors.New("stun: attribute not found")
	ErrUnknownComprehensionRequiredAttr     = errors.New("stun: unknown comprehension-required attribute")
	ErrIntegrityMismatch                    = errors.New("stun: message-integrity mismatch")
	ErrFingerprintMismatch                  = errors.New("stun: fingerprint mismatch")
	ErrInvalidTransactionID                 = errors.New("stun: invalid transaction id length")
	ErrContextViolation                     = errors.New("stun: attribute not valid in this message context")
	ErrValueOutOfRange                      = errors.New("stun: value out of range")
	ErrTypeNotSet                           = errors.New("stun: message type not set")
	ErrUnexpectedEOF                        = errors.New("stun: unexpected end of buffer")
	ErrUnsupportedAddressFamily             = errors.New("stun: unsupported address family")

	// ErrTimeout and ErrCancelled are raised by the transaction engine
	// (client package), kept here so both packages share one error identity.
	ErrTimeout   = errors.New("stun: transaction timed out")
	ErrCancelled = errors.New("stun: transaction cancelled")
)
