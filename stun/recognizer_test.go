// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMessageAcceptsEncoderOutput(t *testing.T) {
	r := NewRequest()
	r.SetType(NewType(MethodBinding, ClassRequest))

	b, err := r.Encode()
	require.NoError(t, err)

	assert.True(t, IsMessage(b, false))
}

func TestIsMessageRejectsBadCookie(t *testing.T) {
	b := make([]byte, 20)
	b[4], b[5], b[6], b[7] = 0xde, 0xad, 0xbe, 0xef

	assert.False(t, IsMessage(b, false))
	assert.True(t, IsMessage(b, true))
}

func TestIsMessageRejectsShortBuffer(t *testing.T) {
	assert.False(t, IsMessage(make([]byte, 19), true))
}

func TestIsMessageRejectsNonZeroTopBits(t *testing.T) {
	b := make([]byte, 20)
	b[0] = 0xc0

	assert.False(t, IsMessage(b, true))
}
