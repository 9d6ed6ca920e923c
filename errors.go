package bcsp

import "errors"

// Error kinds returned by handshake and transport operations. All
// handshake errors are fatal and consume the state that produced them;
// all transport MAC errors are fatal for the connection because the
// underlying sponges cannot be rewound. None of these carry sensitive
// material.
var (
	// ErrMalformedInput covers wrong buffer lengths, non-canonical
	// scalars, and invalid point encodings.
	ErrMalformedInput = errors.New("bcsp: malformed input")

	// ErrIdentityMismatch is returned when the server public key
	// revealed inside the handshake cipher does not match the one the
	// client expected to be talking to.
	ErrIdentityMismatch = errors.New("bcsp: identity mismatch")

	// ErrSignatureInvalid is returned when an Ed-like signature over a
	// handshake message fails to verify.
	ErrSignatureInvalid = errors.New("bcsp: signature invalid")

	// ErrStale is returned when a peer's handshake timestamp falls
	// outside MaxLatency of the local clock.
	ErrStale = errors.New("bcsp: stale timestamp")

	// ErrMACInvalid is returned when a frame's header or payload MAC
	// fails to verify.
	ErrMACInvalid = errors.New("bcsp: mac invalid")

	// ErrUnknownUser names the case where a handshake's public key does
	// not map to a known user. No function in this package returns it:
	// FindUIDOrReject records a failed lookup in its flag instead, and the
	// handshake state machine passes FindUID's return value, including 0,
	// through uninterpreted.
	ErrUnknownUser = errors.New("bcsp: unknown user")

	// ErrRequestExhausted is returned when encoding a message on a
	// request that has already used message id 65535; the protocol's
	// message-id space does not wrap.
	ErrRequestExhausted = errors.New("bcsp: request message id space exhausted")

	// ErrZeroRequestID is returned when a caller attempts to use request
	// id 0, which is reserved and never valid per the protocol.
	ErrZeroRequestID = errors.New("bcsp: request id 0 is reserved")
)
