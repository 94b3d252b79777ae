// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import "fmt"

const maxReasonBytes = 763

// ErrorCodeAttribute is the ERROR-CODE attribute: reserved 16 bits, then
// a class/number pair encoding code = 100*class + number, then a UTF-8
// reason phrase. If Reason is empty and Code has a default phrase, the
// default is substituted on encode.
type ErrorCodeAttribute struct {
	Code   ErrorCode
	Reason string
}

// AddTo implements Setter, adding ERROR-CODE. Only valid on error
// responses (invariant 6, enforced by Request.AddRaw).
func (e ErrorCodeAttribute) AddTo(r *Request) error {
	if e.Code < 300 || e.Code > 699 {
		return fmt.Errorf("%w: error code %d", ErrValueOutOfRange, e.Code)
	}

	class := int(e.Code) / 100
	number := int(e.Code) % 100

	reason := e.Reason
	if reason == "" {
		reason = defaultReasons[e.Code]
	}

	if len(reason) > maxReasonBytes || len([]rune(reason)) > 128 {
		return fmt.Errorf("%w: ERROR-CODE reason phrase too long", ErrValueOutOfRange)
	}

	v := make([]byte, 0, 4+len(reason))
	v = append(v, 0x00, 0x00, byte(class), byte(number))
	v = append(v, reason...)

	return r.AddRaw(RawAttribute{Type: AttrErrorCode, Value: v})
}

// GetFrom implements Getter.
func (e *ErrorCodeAttribute) GetFrom(resp *Response) error {
	raw, ok := resp.Get(AttrErrorCode)
	if !ok {
		return fmt.Errorf("%w: ERROR-CODE", ErrAttributeNotFound)
	}

	if len(raw.Value) < 4 {
		return fmt.Errorf("%w: ERROR-CODE", ErrBadAttributeLength)
	}

	class := int(raw.Value[2])
	number := int(raw.Value[3])

	e.Code = ErrorCode(class*100 + number)
	e.Reason = string(raw.Value[4:])

	return nil
}

// UnknownAttributes is the UNKNOWN-ATTRIBUTES attribute: a sequence of
// 16-bit attribute types with no inter-entry padding, accompanying a 420
// error response. There is no cap on the number of entries.
type UnknownAttributes []AttrType

// AddTo implements Setter. Only valid on error responses.
func (u UnknownAttributes) AddTo(r *Request) error {
	v := make([]byte, 0, 2*len(u))
	for _, t := range u {
		v = appendUint16(v, uint16(t))
	}

	return r.AddRaw(RawAttribute{Type: AttrUnknownAttributes, Value: v})
}

// GetFrom implements Getter.
func (u *UnknownAttributes) GetFrom(resp *Response) error {
	raw, ok := resp.Get(AttrUnknownAttributes)
	if !ok {
		return fmt.Errorf("%w: UNKNOWN-ATTRIBUTES", ErrAttributeNotFound)
	}

	if len(raw.Value)%2 != 0 {
		return fmt.Errorf("%w: UNKNOWN-ATTRIBUTES length %d not even", ErrBadAttributeLength, len(raw.Value))
	}

	out := make(UnknownAttributes, 0, len(raw.Value)/2)
	for i := 0; i < len(raw.Value); i += 2 {
		v, _ := readUint16(raw.Value[i : i+2])
		out = append(out, AttrType(v))
	}

	*u = out

	return nil
}
