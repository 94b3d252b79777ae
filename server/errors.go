// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package server

import "errors"

var (
	errFailedToGenerateNonce = errors.New("server: failed to generate nonce")
	errInvalidNonce          = errors.New("server: invalid or stale nonce")
	errFailedToSendResponse  = errors.New("server: failed to send response")
	errBadConfig             = errors.New("server: invalid configuration")
	errNoSuchUser            = errors.New("server: no such user")
)
