// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"fmt"
	"math"
)

// Priority is the ICE candidate PRIORITY attribute, a 32-bit signed value
// in [-2^31, 2^31-1] carried big-endian. The Go type is wider than the
// wire value so an out-of-range Priority can actually be constructed and
// rejected by AddTo, rather than silently truncated on conversion to a
// 32-bit type.
type Priority int64

// AddTo implements Setter.
func (p Priority) AddTo(r *Request) error {
	if p < math.MinInt32 || p > math.MaxInt32 {
		return fmt.Errorf("%w: PRIORITY must be in [%d, %d], got %d",
			ErrValueOutOfRange, math.MinInt32, math.MaxInt32, int64(p))
	}

	v := appendUint32(nil, uint32(int32(p)))

	return r.AddRaw(RawAttribute{Type: AttrPriority, Value: v})
}

// GetFrom implements Getter.
func (p *Priority) GetFrom(resp *Response) error {
	raw, ok := resp.Get(AttrPriority)
	if !ok {
		return fmt.Errorf("%w: PRIORITY", ErrAttributeNotFound)
	}

	v, err := readUint32(raw.Value)
	if err != nil {
		return err
	}

	*p = Priority(int32(v))

	return nil
}

// UseCandidate is the ICE USE-CANDIDATE attribute: zero-length payload,
// presence alone is meaningful. Only valid on Binding requests.
type UseCandidate struct{}

// AddTo implements Setter.
func (UseCandidate) AddTo(r *Request) error {
	return r.AddRaw(RawAttribute{Type: AttrUseCandidate, Value: nil})
}

// GetFrom implements Getter; it succeeds iff the attribute is present.
func (UseCandidate) GetFrom(resp *Response) error {
	if !resp.Contains(AttrUseCandidate) {
		return fmt.Errorf("%w: USE-CANDIDATE", ErrAttributeNotFound)
	}

	return nil
}

const tiebreakerSize = 8

// tiebreaker is the shared 64-bit opaque value behind ICE-CONTROLLED and
// ICE-CONTROLLING.
type tiebreaker struct {
	typ   AttrType
	value uint64
}

func (t tiebreaker) addTo(r *Request) error {
	v := make([]byte, 8)
	writeUint32(v[0:4], uint32(t.value>>32))
	writeUint32(v[4:8], uint32(t.value))

	return r.AddRaw(RawAttribute{Type: t.typ, Value: v})
}

func getTiebreaker(resp *Response, typ AttrType) (uint64, error) {
	raw, ok := resp.Get(typ)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAttributeNotFound, typ)
	}

	if len(raw.Value) != tiebreakerSize {
		return 0, fmt.Errorf("%w: %s must be exactly %d bytes", ErrValueOutOfRange, typ, tiebreakerSize)
	}

	hi, _ := readUint32(raw.Value[0:4])
	lo, _ := readUint32(raw.Value[4:8])

	return uint64(hi)<<32 | uint64(lo), nil
}

// IceControlled carries the ICE-CONTROLLED tiebreaker. Only valid on
// Binding requests.
type IceControlled uint64

// AddTo implements Setter.
func (i IceControlled) AddTo(r *Request) error {
	return tiebreaker{typ: AttrIceControlled, value: uint64(i)}.addTo(r)
}

// GetFrom implements Getter.
func (i *IceControlled) GetFrom(resp *Response) error {
	v, err := getTiebreaker(resp, AttrIceControlled)
	if err != nil {
		return err
	}

	*i = IceControlled(v)

	return nil
}

// IceControlling carries the ICE-CONTROLLING tiebreaker. Only valid on
// Binding requests.
type IceControlling uint64

// AddTo implements Setter.
func (i IceControlling) AddTo(r *Request) error {
	return tiebreaker{typ: AttrIceControlling, value: uint64(i)}.addTo(r)
}

// GetFrom implements Getter.
func (i *IceControlling) GetFrom(resp *Response) error {
	v, err := getTiebreaker(resp, AttrIceControlling)
	if err != nil {
		return err
	}

	*i = IceControlling(v)

	return nil
}
