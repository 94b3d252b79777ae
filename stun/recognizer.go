// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

// IsMessage is a cheap pre-filter for a datagram received on a socket that
// may be multiplexing STUN with other protocols: it returns true iff the
// buffer is at least 20 bytes, the top 2 bits of the first byte are zero,
// and the cookie field equals MagicCookie (or legacy is accepted and the
// buffer is at least 20 bytes regardless of cookie). It never fully parses
// the message.
func IsMessage(b []byte, acceptLegacy bool) bool {
	if len(b) < messageHeaderSize {
		return false
	}

	if b[0]&0xc0 != 0 {
		return false
	}

	if acceptLegacy {
		return true
	}

	cookie, _ := readUint32(b[4:8])

	return cookie == MagicCookie
}
