// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageIntegrityCheck(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))
	require.NoError(t, r.SetTransactionID(bytes.Repeat([]byte{0x01}, TransactionIDSize)))
	require.NoError(t, r.Add(MessageIntegrity("secret")))

	b, err := r.Encode()
	require.NoError(t, err)

	resp, err := Parse(b)
	require.NoError(t, err)

	assert.NoError(t, MessageIntegrity("secret").Check(resp))
	assert.ErrorIs(t, MessageIntegrity("wrong key").Check(resp), ErrIntegrityMismatch)
}

func TestMessageIntegrityThenFingerprint(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))
	require.NoError(t, r.Add(MessageIntegrity("secret")))
	require.NoError(t, r.Add(Fingerprint{}))

	b, err := r.Encode()
	require.NoError(t, err)

	resp, err := Parse(b)
	require.NoError(t, err)

	assert.NoError(t, MessageIntegrity("secret").Check(resp))
	assert.NoError(t, CheckFingerprint(resp))

	// Last 8 bytes of the encoded message are the FINGERPRINT TLV.
	tail := b[len(b)-8:]
	assert.Equal(t, byte(0x80), tail[0])
	assert.Equal(t, byte(0x28), tail[1])
	assert.Equal(t, byte(0x00), tail[2])
	assert.Equal(t, byte(0x04), tail[3])
}

func TestNewLongTermIntegrity(t *testing.T) {
	key := NewLongTermIntegrity("alice", "example.org", "s3cret")
	assert.Len(t, key, 16)

	again := NewLongTermIntegrity("alice", "example.org", "s3cret")
	assert.Equal(t, key, again)

	other := NewLongTermIntegrity("bob", "example.org", "s3cret")
	assert.NotEqual(t, key, other)
}
