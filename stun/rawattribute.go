// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import "fmt"

// AttrType identifies a STUN attribute. The top bit distinguishes
// comprehension-required (0x0000-0x7FFF) from comprehension-optional
// (0x8000-0xFFFF) attributes.
type AttrType uint16

const rawAttrHeaderSize = 4

// RawAttribute is the unprocessed TLV view of an attribute: a 16-bit type,
// a 16-bit length counting only the value (not its padding), and the value
// bytes themselves.
type RawAttribute struct {
	Type  AttrType
	Value []byte
}

// size returns the encoded size of the attribute including its header and
// padding.
func (r RawAttribute) size() int {
	return rawAttrHeaderSize + len(r.Value) + padding(len(r.Value))
}

func (r RawAttribute) appendTo(dst []byte) []byte {
	dst = appendUint16(dst, uint16(r.Type))
	dst = appendUint16(dst, uint16(len(r.Value)))

	return appendPadded(dst, r.Value)
}

// readRawAttribute reads one TLV starting at the head of b, returning the
// attribute and the number of bytes consumed (header + value + padding).
func readRawAttribute(b []byte) (RawAttribute, int, error) {
	if len(b) < rawAttrHeaderSize {
		return RawAttribute{}, 0, fmt.Errorf("%w: attribute header", ErrTruncatedMessage)
	}

	typ, _ := readUint16(b[0:2])
	length, _ := readUint16(b[2:4])

	pad := padding(int(length))
	end := rawAttrHeaderSize + int(length)

	if len(b) < end {
		return RawAttribute{}, 0, fmt.Errorf("%w: attribute value for type 0x%04x", ErrBadAttributeLength, typ)
	}

	value := make([]byte, length)
	copy(value, b[rawAttrHeaderSize:end])

	consumed := end + pad
	if len(b) < consumed {
		// Truncated padding: accept the attribute, do not consume past
		// the buffer. Bad padding is tolerated for interop.
		consumed = end
	}

	return RawAttribute{Type: AttrType(typ), Value: value}, consumed, nil
}
