// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import "fmt"

// Response is the immutable, read-only view of a parsed STUN message.
// Despite the name it represents any parsed message regardless of class
// (request, indication, success or error response): "Response" denotes
// the read-only surface, "Request" the mutable one.
type Response struct {
	typ           Type
	transactionID []byte
	legacy        bool
	attrs         []RawAttribute
	raw           []byte
}

// Parse decodes b into a Response. b is retained (not copied) for the
// integrity/fingerprint verifiers, which need the original prefix bytes;
// callers must not mutate b afterwards.
func Parse(b []byte) (*Response, error) {
	if err := verifyHeaderShape(b); err != nil {
		return nil, err
	}

	var typ Type
	v, _ := readUint16(b[0:2])
	typ.ReadValue(v)

	length, _ := readUint16(b[2:4])
	if len(b) != messageHeaderSize+int(length) {
		return nil, fmt.Errorf("%w: header says %d bytes of attributes, buffer has %d",
			ErrBadAttributeLength, length, len(b)-messageHeaderSize)
	}

	cookie, _ := readUint32(b[4:8])

	resp := &Response{typ: typ, raw: b}

	if cookie == MagicCookie {
		resp.transactionID = b[8:messageHeaderSize]
	} else {
		resp.legacy = true
		resp.transactionID = b[4:messageHeaderSize]
	}

	attrBytes := b[messageHeaderSize:]
	for len(attrBytes) > 0 {
		attr, consumed, err := readRawAttribute(attrBytes)
		if err != nil {
			return nil, err
		}

		if _, dup := findAttr(resp.attrs, attr.Type); dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAttribute, attr.Type)
		}

		resp.attrs = append(resp.attrs, attr)
		attrBytes = attrBytes[consumed:]
	}

	return resp, nil
}

// Type returns the message's class and method.
func (r *Response) Type() Type {
	return r.typ
}

// Class is a shorthand for Type().Class.
func (r *Response) Class() Class {
	return r.typ.Class
}

// Method is a shorthand for Type().Method.
func (r *Response) Method() Method {
	return r.typ.Method
}

// Legacy reports whether this message used the 16-byte legacy transaction
// id format (no separate magic cookie). Per Design Note, this package only
// ever parses legacy messages, never produces them.
func (r *Response) Legacy() bool {
	return r.legacy
}

// TransactionID returns the transaction id: 12 bytes for a modern message,
// 16 for legacy.
func (r *Response) TransactionID() []byte {
	return r.transactionID
}

// Raw returns the original encoded bytes this Response was parsed from.
func (r *Response) Raw() []byte {
	return r.raw
}

// Contains reports whether an attribute of typ is present.
func (r *Response) Contains(typ AttrType) bool {
	_, ok := findAttr(r.attrs, typ)

	return ok
}

// Get returns the raw attribute of typ if present.
func (r *Response) Get(typ AttrType) (RawAttribute, bool) {
	return findAttr(r.attrs, typ)
}

// Attributes returns every attribute found during parsing, in wire order.
func (r *Response) Attributes() []RawAttribute {
	return r.attrs
}

// xorKey returns the 16 bytes of XOR key material: cookie||transaction_id
// for a modern message, or the legacy 16-byte id itself (which already
// begins with what would be the cookie) for a legacy one.
func (r *Response) xorKey() []byte {
	if r.legacy {
		return r.transactionID
	}

	c := cookieBytes()
	key := make([]byte, 0, 16)
	key = append(key, c[:]...)
	key = append(key, r.transactionID...)

	return key
}

// CheckUnknownAttributes inspects the message for comprehension-required
// attributes this package did not decode into a recognized value and
// returns their types, for building a 420 Unknown Attribute error response.
func (r *Response) CheckUnknownAttributes(recognized map[AttrType]bool) []AttrType {
	var unknown []AttrType

	for _, a := range r.attrs {
		if recognized[a.Type] {
			continue
		}

		if a.Type.IsComprehensionRequired() {
			unknown = append(unknown, a.Type)
		}
	}

	return unknown
}
