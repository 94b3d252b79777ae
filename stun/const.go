// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package stun implements the STUN message codec: encoding, decoding,
// and validation of the on-wire message format together with the
// attribute registry, MESSAGE-INTEGRITY and FINGERPRINT computation,
// and a cheap recognizer for multiplexed sockets.
package stun

// MagicCookie is the fixed 32-bit value that opens every modern STUN
// header and keys the XOR-address obfuscation.
const MagicCookie uint32 = 0x2112A442

// TransactionIDSize is the length in bytes of a modern transaction id.
const TransactionIDSize = 12

// legacyTransactionIDSize is the length of a legacy transaction id, which
// has no separate magic cookie field: the cookie is the first four bytes
// of the id itself.
const legacyTransactionIDSize = 16

const messageHeaderSize = 20

// Class is the 2-bit message class.
type Class byte

// Message classes, RFC 5389 section 6.
const (
	ClassRequest         Class = 0x00
	ClassIndication      Class = 0x01
	ClassSuccessResponse Class = 0x02
	ClassErrorResponse   Class = 0x03
)

var classNames = map[Class]string{
	ClassRequest:         "request",
	ClassIndication:      "indication",
	ClassSuccessResponse: "success response",
	ClassErrorResponse:   "error response",
}

func (c Class) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}

	return "unknown class"
}

// Method is the 12-bit message method.
type Method uint16

// Methods. Binding is the only one this package fully implements; the rest
// are kept so ICE/TURN-adjacent traffic can be classified and round-tripped
// even though their allocation semantics are out of scope for this module.
const (
	MethodBinding          Method = 0x001
	MethodSharedSecret     Method = 0x002
	MethodAllocate         Method = 0x003
	MethodRefresh          Method = 0x004
	MethodSend             Method = 0x006
	MethodData             Method = 0x007
	MethodCreatePermission Method = 0x008
	MethodChannelBind      Method = 0x009
)

var methodNames = map[Method]string{
	MethodBinding:          "binding",
	MethodSharedSecret:     "shared secret",
	MethodAllocate:         "allocate",
	MethodRefresh:          "refresh",
	MethodSend:             "send",
	MethodData:             "data",
	MethodCreatePermission: "create permission",
	MethodChannelBind:      "channel bind",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}

	return "unknown method"
}

// Type is the full 14-bit message type: a method paired with a class.
type Type struct {
	Class  Class
	Method Method
}

// NewType builds a Type from its parts, the counterpart to Type.Value.
func NewType(method Method, class Class) Type {
	return Type{Class: class, Method: method}
}

func (t Type) String() string {
	return t.Method.String() + " " + t.Class.String()
}

// Attribute types, RFC 5389 section 18.2 plus the ICE additions this
// package supports (RFC 5245 section 19.1).
const (
	AttrMappedAddress     AttrType = 0x0001
	AttrUsername          AttrType = 0x0006
	AttrMessageIntegrity  AttrType = 0x0008
	AttrErrorCode         AttrType = 0x0009
	AttrUnknownAttributes AttrType = 0x000A
	AttrRealm             AttrType = 0x0014
	AttrNonce             AttrType = 0x0015
	AttrXORMappedAddress  AttrType = 0x0020
	AttrPriority          AttrType = 0x0024
	AttrUseCandidate      AttrType = 0x0025

	AttrSoftware        AttrType = 0x8022
	AttrAlternateServer AttrType = 0x8023
	AttrFingerprint     AttrType = 0x8028
	AttrIceControlled   AttrType = 0x8029
	AttrIceControlling  AttrType = 0x802A
)

var attrNames = map[AttrType]string{
	AttrMappedAddress:     "MAPPED-ADDRESS",
	AttrUsername:          "USERNAME",
	AttrMessageIntegrity:  "MESSAGE-INTEGRITY",
	AttrErrorCode:         "ERROR-CODE",
	AttrUnknownAttributes: "UNKNOWN-ATTRIBUTES",
	AttrRealm:             "REALM",
	AttrNonce:             "NONCE",
	AttrXORMappedAddress:  "XOR-MAPPED-ADDRESS",
	AttrPriority:          "PRIORITY",
	AttrUseCandidate:      "USE-CANDIDATE",
	AttrSoftware:          "SOFTWARE",
	AttrAlternateServer:   "ALTERNATE-SERVER",
	AttrFingerprint:       "FINGERPRINT",
	AttrIceControlled:     "ICE-CONTROLLED",
	AttrIceControlling:    "ICE-CONTROLLING",
}

// IsComprehensionRequired reports whether an unrecognized attribute of this
// type must cause the message to be rejected (top bit clear) as opposed to
// silently ignored (top bit set).
func (t AttrType) IsComprehensionRequired() bool {
	return t&0x8000 == 0
}

func (t AttrType) String() string {
	if s, ok := attrNames[t]; ok {
		return s
	}

	return "unknown attribute 0x" + hexUint16(uint16(t))
}

// ErrorCode is the numeric STUN error code, 100*class + number.
type ErrorCode int

// Error codes with a default reason phrase, RFC 5389 section 15.6.
const (
	CodeTryAlternate     ErrorCode = 300
	CodeBadRequest       ErrorCode = 400
	CodeUnauthorized     ErrorCode = 401
	CodeForbidden        ErrorCode = 403
	CodeUnknownAttribute ErrorCode = 420
	CodeStaleNonce       ErrorCode = 438
	CodeServerError      ErrorCode = 500
)

var defaultReasons = map[ErrorCode]string{
	CodeTryAlternate:     "Try Alternate",
	CodeBadRequest:       "Bad Request",
	CodeUnauthorized:     "Unauthorized",
	CodeForbidden:        "Forbidden",
	CodeUnknownAttribute: "Unknown Attribute",
	CodeStaleNonce:       "Stale Nonce",
	CodeServerError:      "Server Error",
}

func hexUint16(v uint16) string {
	const hexDigits = "0123456789abcdef"
	buf := [4]byte{hexDigits[v>>12&0xf], hexDigits[v>>8&0xf], hexDigits[v>>4&0xf], hexDigits[v&0xf]}

	return string(buf[:])
}
