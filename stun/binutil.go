// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"encoding/binary"
	"fmt"
)

// padding returns the number of zero bytes needed to round n up to the
// next multiple of 4.
func padding(n int) int {
	return (4 - n%4) % 4
}

func readUint16(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, fmt.Errorf("%w: need 2 bytes, have %d", ErrUnexpectedEOF, len(b))
	}

	return binary.BigEndian.Uint16(b), nil
}

func readUint32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes, have %d", ErrUnexpectedEOF, len(b))
	}

	return binary.BigEndian.Uint32(b), nil
}

func writeUint16(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

func writeUint32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// appendUint16 appends v as two big-endian bytes.
func appendUint16(dst []byte, v uint16) []byte {
	var tmp [2]byte
	writeUint16(tmp[:], v)

	return append(dst, tmp[:]...)
}

// appendUint32 appends v as four big-endian bytes.
func appendUint32(dst []byte, v uint32) []byte {
	var tmp [4]byte
	writeUint32(tmp[:], v)

	return append(dst, tmp[:]...)
}

// appendPadded appends v followed by zero padding out to a 4-byte boundary.
func appendPadded(dst, v []byte) []byte {
	dst = append(dst, v...)
	for i := 0; i < padding(len(v)); i++ {
		dst = append(dst, 0)
	}

	return dst
}
