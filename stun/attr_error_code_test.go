// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorResponse() *Request {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassErrorResponse))

	return r
}

func TestErrorCodeDefaultReason(t *testing.T) {
	r := newErrorResponse()
	require.NoError(t, r.Add(ErrorCodeAttribute{Code: CodeUnauthorized}))

	b, err := r.Encode()
	require.NoError(t, err)

	resp, err := Parse(b)
	require.NoError(t, err)

	var ec ErrorCodeAttribute
	require.NoError(t, ec.GetFrom(resp))
	assert.Equal(t, CodeUnauthorized, ec.Code)
	assert.Equal(t, "Unauthorized", ec.Reason)
}

func TestErrorCodeOutOfRange(t *testing.T) {
	r := newErrorResponse()
	err := r.Add(ErrorCodeAttribute{Code: 299})
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	err = r.Add(ErrorCodeAttribute{Code: 700})
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestErrorCodeReasonTooLong(t *testing.T) {
	r := newErrorResponse()
	err := r.Add(ErrorCodeAttribute{Code: CodeBadRequest, Reason: strings.Repeat("x", 129)})
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestUnknownAttributesRoundTrip(t *testing.T) {
	r := newErrorResponse()
	want := UnknownAttributes{AttrPriority, AttrUseCandidate, AttrIceControlled}
	require.NoError(t, r.Add(want))

	b, err := r.Encode()
	require.NoError(t, err)

	resp, err := Parse(b)
	require.NoError(t, err)

	var got UnknownAttributes
	require.NoError(t, got.GetFrom(resp))
	assert.Equal(t, want, got)
}

func TestUsernameTooLong(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))

	err := r.Add(Username(strings.Repeat("a", 514)))
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestPriorityRoundTrip(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))
	require.NoError(t, r.Add(Priority(1<<31 - 1)))

	b, err := r.Encode()
	require.NoError(t, err)

	resp, err := Parse(b)
	require.NoError(t, err)

	var p Priority
	require.NoError(t, p.GetFrom(resp))
	assert.Equal(t, Priority(1<<31-1), p)
}

func TestPriorityOutOfRange(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))

	err := r.Add(Priority(3_000_000_000))
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	err = r.Add(Priority(-1 << 31 - 1))
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestUseCandidatePresence(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))
	require.NoError(t, r.Add(UseCandidate{}))

	b, err := r.Encode()
	require.NoError(t, err)

	resp, err := Parse(b)
	require.NoError(t, err)

	assert.NoError(t, UseCandidate{}.GetFrom(resp))
}

func TestTiebreakerRoundTrip(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))
	require.NoError(t, r.Add(IceControlling(0x0102030405060708)))

	b, err := r.Encode()
	require.NoError(t, err)

	resp, err := Parse(b)
	require.NoError(t, err)

	var ic IceControlling
	require.NoError(t, ic.GetFrom(resp))
	assert.Equal(t, IceControlling(0x0102030405060708), ic)
}

func TestSetTransactionIDRejectsBadLength(t *testing.T) {
	r := NewRequest()
	err := r.SetTransactionID(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidTransactionID)
}
