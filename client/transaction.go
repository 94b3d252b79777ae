// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/pion/randutil"
	"github.com/webrtcstun/stun/stun"
)

// pendingTransaction is the engine's bookkeeping for one outstanding
// request: the pending-transaction map is the only state shared across
// the read loop and concurrent RoundTrip calls.
type pendingTransaction struct {
	resultCh chan transactionResult
	done     bool
}

type transactionResult struct {
	resp *stun.Response
	err  error
}

// transactionEngine is client-side request/response correlation with a
// doubling retransmission schedule, guarded by a single mutex: access to
// the pending-transaction map must be serialized on a multithreaded runtime.
type transactionEngine struct {
	mu      sync.Mutex
	pending map[string]*pendingTransaction

	log logging.LeveledLogger
}

func newTransactionEngine(log logging.LeveledLogger) *transactionEngine {
	return &transactionEngine{
		pending: make(map[string]*pendingTransaction),
		log:     log,
	}
}

func txKey(id []byte) string {
	return hex.EncodeToString(id)
}

// register adds a pending entry keyed by the transaction id and returns a
// function that removes it (used both on resolution and on cancellation).
func (e *transactionEngine) register(id []byte) (*pendingTransaction, func()) {
	key := txKey(id)

	pt := &pendingTransaction{resultCh: make(chan transactionResult, 1)}

	e.mu.Lock()
	e.pending[key] = pt
	e.mu.Unlock()

	return pt, func() {
		e.mu.Lock()
		delete(e.pending, key)
		e.mu.Unlock()
	}
}

// dispatch is called by the read loop for every datagram recognized as
// STUN. It resolves the matching pending transaction, if any; unmatched or
// late datagrams are dropped with a debug log entry.
func (e *transactionEngine) dispatch(resp *stun.Response) {
	if resp.Class() != stun.ClassSuccessResponse && resp.Class() != stun.ClassErrorResponse {
		e.log.Debugf("client: %v: class %s", errUnexpectedClass, resp.Class())

		return
	}

	key := txKey(resp.TransactionID())

	e.mu.Lock()
	pt, ok := e.pending[key]
	if ok {
		delete(e.pending, key)
	}
	e.mu.Unlock()

	if !ok || pt.done {
		e.log.Debugf("client: %v: transaction %s", errTransactionMismatch, key)

		return
	}

	pt.done = true
	pt.resultCh <- transactionResult{resp: resp}
}

// roundTrip runs the send/retransmit/wait loop for one transaction. send
// is called once per attempt; it is the caller's responsibility to write
// the request bytes to the transport.
func (e *transactionEngine) roundTrip(
	ctx context.Context,
	id []byte,
	rto time.Duration,
	rc, rm int,
	rnd randutil.MathRandomGenerator,
	send func() error,
) (*stun.Response, error) {
	pt, unregister := e.register(id)
	defer unregister()

	if err := send(); err != nil {
		return nil, fmt.Errorf("client: sending request: %w", err)
	}

	interval := rto
	attempts := 1

	for {
		var timeout time.Duration
		if attempts < rc {
			timeout = jitter(interval, rnd)
		} else {
			timeout = jitter(time.Duration(rm)*rto, rnd)
		}

		timer := time.NewTimer(timeout)

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, stun.ErrCancelled
		case res := <-pt.resultCh:
			timer.Stop()

			return res.resp, res.err
		case <-timer.C:
			if attempts >= rc {
				return nil, stun.ErrTimeout
			}

			e.log.Debugf("client: retransmitting transaction %s (attempt %d)", txKey(id), attempts+1)

			if err := send(); err != nil {
				return nil, fmt.Errorf("client: retransmitting request: %w", err)
			}

			interval *= 2
			attempts++
		}
	}
}

// jitter randomizes d by up to 10% to avoid every outstanding transaction
// retransmitting in lockstep, matching the injectable-Rand pattern
// relay_address_generator_range.go uses for its own retry/port selection.
func jitter(d time.Duration, rnd randutil.MathRandomGenerator) time.Duration {
	if d <= 0 {
		return d
	}

	spread := int(d / 10)
	if spread <= 0 {
		return d
	}

	return d - time.Duration(spread)/2 + time.Duration(rnd.Intn(spread))
}
