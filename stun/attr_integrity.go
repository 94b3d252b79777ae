// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // required by RFC 5389 section 15.4 long-term credential key derivation
	"crypto/sha1"
	"fmt"
)

const messageIntegritySize = 20

// MessageIntegrity is an HMAC-SHA1 key used both to append and to verify
// the MESSAGE-INTEGRITY attribute (RFC 5389 section 15.4).
type MessageIntegrity []byte

// NewLongTermIntegrity derives a MessageIntegrity key from a long-term
// credential per RFC 5389 section 15.4: MD5("username:realm:password").
func NewLongTermIntegrity(username, realm, password string) MessageIntegrity {
	h := md5.New() //nolint:gosec
	_, _ = h.Write([]byte(username + ":" + realm + ":" + password))

	return MessageIntegrity(h.Sum(nil))
}

// AddTo implements Setter. It reserves a 20-byte placeholder, encodes the
// message so far, computes HMAC-SHA1 over everything but the placeholder
// value, and patches the digest in place. MESSAGE-INTEGRITY must be added
// before FINGERPRINT so the fingerprint's checksum covers it (invariant 4);
// Request.AddRaw enforces the reverse is rejected.
func (m MessageIntegrity) AddTo(r *Request) error {
	if err := r.AddRaw(RawAttribute{Type: AttrMessageIntegrity, Value: make([]byte, messageIntegritySize)}); err != nil {
		return err
	}

	encoded, err := r.Encode()
	if err != nil {
		return err
	}

	prefix := encoded[:len(encoded)-messageIntegritySize]

	mac := hmac.New(sha1.New, []byte(m))
	_, _ = mac.Write(prefix)

	r.attrs[len(r.attrs)-1].Value = mac.Sum(nil)

	return nil
}

// Check verifies MESSAGE-INTEGRITY against resp using key m. It recomputes
// the HMAC over the bytes preceding the attribute's value, with the
// header length field adjusted to point to the end of MESSAGE-INTEGRITY
// and excluding anything that follows it (such as FINGERPRINT) — matching
// the view the attribute was originally signed under.
func (m MessageIntegrity) Check(resp *Response) error {
	raw, ok := resp.Get(AttrMessageIntegrity)
	if !ok {
		return fmt.Errorf("%w: MESSAGE-INTEGRITY", ErrAttributeNotFound)
	}

	if len(raw.Value) != messageIntegritySize {
		return fmt.Errorf("%w: MESSAGE-INTEGRITY", ErrBadAttributeLength)
	}

	valueStart, err := attrValueOffset(resp.raw, AttrMessageIntegrity)
	if err != nil {
		return err
	}

	prefix := make([]byte, valueStart)
	copy(prefix, resp.raw[:valueStart])
	writeUint16(prefix[2:4], uint16(valueStart-messageHeaderSize+messageIntegritySize))

	mac := hmac.New(sha1.New, []byte(m))
	_, _ = mac.Write(prefix)

	if !hmac.Equal(mac.Sum(nil), raw.Value) {
		return ErrIntegrityMismatch
	}

	return nil
}

// attrValueOffset re-walks the attribute stream of an encoded message to
// find the byte offset at which the value of the first attribute of typ
// begins (i.e. just past its 4-byte TLV header).
func attrValueOffset(raw []byte, typ AttrType) (int, error) {
	offset := messageHeaderSize
	rest := raw[messageHeaderSize:]

	for len(rest) > 0 {
		if len(rest) < rawAttrHeaderSize {
			return 0, fmt.Errorf("%w: attribute header", ErrTruncatedMessage)
		}

		attrType, _ := readUint16(rest[0:2])
		length, _ := readUint16(rest[2:4])

		if AttrType(attrType) == typ {
			return offset + rawAttrHeaderSize, nil
		}

		consumed := rawAttrHeaderSize + int(length) + padding(int(length))
		if consumed > len(rest) {
			return 0, fmt.Errorf("%w: attribute value", ErrBadAttributeLength)
		}

		offset += consumed
		rest = rest[consumed:]
	}

	return 0, fmt.Errorf("%w: %s", ErrAttributeNotFound, typ)
}
