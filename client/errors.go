// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package client

import "errors"

var (
	errBadConfig          = errors.New("client: invalid configuration")
	errAlreadyClosed      = errors.New("client: already closed")
	errUnexpectedClass    = errors.New("client: response class is neither success nor error")
	errTransactionMismatch = errors.New("client: response transaction id does not match any pending request")
)
