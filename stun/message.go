// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import "fmt"

// cookieBytes returns the 4-byte big-endian encoding of MagicCookie.
func cookieBytes() [4]byte {
	var b [4]byte
	writeUint32(b[:], MagicCookie)

	return b
}

// verifyHeaderShape checks the two cheap structural facts every STUN
// message must satisfy regardless of class: the top 2 bits of the first
// byte are zero, and the length field is a multiple of 4.
func verifyHeaderShape(b []byte) error {
	if len(b) < messageHeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedMessage, messageHeaderSize, len(b))
	}

	if b[0]&0xc0 != 0 {
		return fmt.Errorf("%w: top 2 bits of first header byte must be zero", ErrTruncatedMessage)
	}

	length, _ := readUint16(b[2:4])
	if length%4 != 0 {
		return fmt.Errorf("%w: message length %d not a multiple of 4", ErrBadAttributeLength, length)
	}

	return nil
}

// findAttr returns the first attribute of typ in attrs, or false.
func findAttr(attrs []RawAttribute, typ AttrType) (RawAttribute, bool) {
	for _, a := range attrs {
		if a.Type == typ {
			return a, true
		}
	}

	return RawAttribute{}, false
}
