// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"crypto/rand"
	"fmt"
)

// Request is the mutable builder for an outgoing STUN message: a request,
// an indication, or either class of response. It is built up by successive
// Add calls and serialized on demand by Encode; Encode does not consume the
// builder, so the caller may mutate and re-encode.
//
// Once a MESSAGE-INTEGRITY attribute has been added, only FINGERPRINT may
// be added afterwards; once FINGERPRINT has been added, the message is
// closed to further attributes. This is invariant 4/5 from the message
// format enforced structurally rather than by a runtime order check at
// encode time.
type Request struct {
	typ           Type
	typeSet       bool
	transactionID []byte
	attrs         []RawAttribute

	integrityAdded   bool
	fingerprintAdded bool
}

// NewRequest creates an empty builder. The message type must be set with
// SetType before Encode will succeed.
func NewRequest() *Request {
	return &Request{}
}

// Build is a convenience constructor: set the type, generate a random
// transaction id, and apply setters in one call.
func Build(typ Type, setters ...Setter) (*Request, error) {
	r := NewRequest()
	r.SetType(typ)

	if err := r.SetTransactionID(nil); err != nil {
		return nil, err
	}

	for _, s := range setters {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// SetType sets the message class and method.
func (r *Request) SetType(typ Type) {
	r.typ = typ
	r.typeSet = true
}

// Type returns the currently-set message type.
func (r *Request) Type() Type {
	return r.typ
}

// SetTransactionID sets the transaction id. A nil or empty id generates a
// fresh random 12-byte id. Any other length than 12 is rejected: this
// builder never produces legacy 16-byte transaction ids (Design Note:
// legacy is read-only compatibility).
func (r *Request) SetTransactionID(id []byte) error {
	if len(id) == 0 {
		id = make([]byte, TransactionIDSize)
		if _, err := rand.Read(id); err != nil {
			return fmt.Errorf("stun: generating transaction id: %w", err)
		}
	}

	if len(id) != TransactionIDSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidTransactionID, len(id), TransactionIDSize)
	}

	r.transactionID = append([]byte(nil), id...)

	return nil
}

// HasTransactionID reports whether SetTransactionID has already been
// called, so a caller that wants to supply its own source of randomness
// can avoid TransactionID's implicit crypto/rand fallback.
func (r *Request) HasTransactionID() bool {
	return r.transactionID != nil
}

// TransactionID returns the 12-byte transaction id, generating one first if
// none has been set yet.
func (r *Request) TransactionID() []byte {
	if r.transactionID == nil {
		_ = r.SetTransactionID(nil)
	}

	return r.transactionID
}

// Add applies a Setter, letting attribute value types own their own
// encoding and validation.
func (r *Request) Add(s Setter) error {
	return s.AddTo(r)
}

// AddRaw attaches a raw attribute, enforcing uniqueness (invariant 3), the
// error/ICE context rules (invariants 6-7), and the integrity/fingerprint
// tail ordering (invariants 4-5). Attribute value types call this from
// their AddTo implementations; callers needing an attribute type this
// package does not model can call it directly.
func (r *Request) AddRaw(attr RawAttribute) error {
	if r.fingerprintAdded {
		return fmt.Errorf("%w: FINGERPRINT must be the last attribute", ErrContextViolation)
	}

	if r.integrityAdded && attr.Type != AttrFingerprint {
		return fmt.Errorf("%w: only FINGERPRINT may follow MESSAGE-INTEGRITY", ErrContextViolation)
	}

	if _, exists := findAttr(r.attrs, attr.Type); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAttribute, attr.Type)
	}

	if err := r.checkContext(attr.Type); err != nil {
		return err
	}

	r.attrs = append(r.attrs, attr)

	switch attr.Type {
	case AttrMessageIntegrity:
		r.integrityAdded = true
	case AttrFingerprint:
		r.fingerprintAdded = true
	}

	return nil
}

// checkContext enforces invariants 6 and 7: error-only attributes belong
// only to error responses, ICE role-conflict attributes only to Binding
// requests.
func (r *Request) checkContext(typ AttrType) error {
	switch typ {
	case AttrErrorCode, AttrUnknownAttributes:
		if r.typ.Class != ClassErrorResponse {
			return fmt.Errorf("%w: %s only valid on error responses", ErrContextViolation, typ)
		}
	case AttrIceControlled, AttrIceControlling, AttrUseCandidate:
		if r.typ.Method != MethodBinding || r.typ.Class != ClassRequest {
			return fmt.Errorf("%w: %s only valid on Binding requests", ErrContextViolation, typ)
		}
	}

	return nil
}

// Remove deletes the attribute of typ, returning it and true if present.
func (r *Request) Remove(typ AttrType) (RawAttribute, bool) {
	for i, a := range r.attrs {
		if a.Type == typ {
			r.attrs = append(r.attrs[:i], r.attrs[i+1:]...)

			switch typ {
			case AttrMessageIntegrity:
				r.integrityAdded = false
			case AttrFingerprint:
				r.fingerprintAdded = false
			}

			return a, true
		}
	}

	return RawAttribute{}, false
}

// Get returns the raw attribute of typ if present.
func (r *Request) Get(typ AttrType) (RawAttribute, bool) {
	return findAttr(r.attrs, typ)
}

// xorKey gives attribute codecs the XOR key material; a
// Request is always modern, so the key is simply cookie||transaction_id.
func (r *Request) xorKey() []byte {
	c := cookieBytes()
	key := make([]byte, 0, 16)
	key = append(key, c[:]...)
	key = append(key, r.TransactionID()...)

	return key
}

// Encode serializes the builder to bytes. Encode does not mutate or
// consume the builder.
func (r *Request) Encode() ([]byte, error) {
	if !r.typeSet {
		return nil, ErrTypeNotSet
	}

	body := make([]byte, 0, 64)
	for _, a := range r.attrs {
		body = a.appendTo(body)
	}

	out := make([]byte, 0, messageHeaderSize+len(body))
	out = appendUint16(out, r.typ.Value())
	out = appendUint16(out, uint16(len(body)))
	c := cookieBytes()
	out = append(out, c[:]...)
	out = append(out, r.TransactionID()...)
	out = append(out, body...)

	return out, nil
}
