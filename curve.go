package bcsp

import (
	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

// SK is a long-term identity secret key: the raw 32-byte secret plus the
// clamped scalar and 32-byte nonce derived from it. All three fields are
// sensitive and are wiped when the key is dropped via Wipe.
type SK struct {
	key    [32]byte
	scalar *edwards25519.Scalar
	nonce  [32]byte
}

// PK is a long-term identity public key: a compressed Edwards point.
type PK struct {
	point *edwards25519.Point
}

// XSK is a single-use ephemeral Diffie-Hellman scalar.
type XSK struct {
	scalar [32]byte
}

// XPK is the Montgomery public value matching an XSK.
type XPK struct {
	u [32]byte
}

// ExchangedSecret is the Montgomery u-coordinate resulting from an X25519
// exchange. Its bytes seed every downstream sponge in the handshake.
type ExchangedSecret struct {
	u [32]byte
}

// SKFromKey derives the clamped scalar and nonce for a long-term secret
// key's raw 32 bytes, per the DSA_SK_DERIVE domain.
func SKFromKey(raw [32]byte) (SK, error) {
	s := newSponge(tagDSASKDerive)
	s.Absorb(raw[:])
	scalarBytes := s.Squeeze32()
	nonce := s.Squeeze32()
	scalar, err := new(edwards25519.Scalar).SetBytesWithClamping(scalarBytes[:])
	wipe(scalarBytes[:])
	if err != nil {
		return SK{}, err
	}
	return SK{key: raw, scalar: scalar, nonce: nonce}, nil
}

// PK returns the public key matching sk: the clamped scalar times the
// Edwards base point, compressed.
func (sk SK) PK() PK {
	p := new(edwards25519.Point).ScalarBaseMult(sk.scalar)
	return PK{point: p}
}

// Wipe zeroes sk's sensitive fields. Call when the key is no longer
// needed; long-term keys held across the process lifetime are never
// wiped until shutdown.
func (sk *SK) Wipe() {
	wipe(sk.key[:])
	wipe(sk.nonce[:])
	sk.scalar = edwards25519.NewScalar()
}

// Bytes returns the compressed Edwards point of pk.
func (pk PK) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], pk.point.Bytes())
	return out
}

// PKFromBytes decodes a compressed Edwards point. It rejects malformed or
// non-canonical encodings.
func PKFromBytes(b [32]byte) (PK, error) {
	p, err := new(edwards25519.Point).SetBytes(b[:])
	if err != nil {
		return PK{}, ErrMalformedInput
	}
	// SetBytes accepts non-canonical encodings of valid points; require
	// the input to be the point's own canonical encoding.
	if [32]byte(p.Bytes()) != b {
		return PK{}, ErrMalformedInput
	}
	return PK{point: p}, nil
}

// Equal reports whether pk and other encode the same compressed point.
func (pk PK) Equal(other PK) bool {
	return pk.Bytes() == other.Bytes()
}

// GenerateXSK clamps 32 bytes squeezed from the connector's PRNG sponge
// into a fresh ephemeral exchange scalar.
func GenerateXSK(prng *Sponge) XSK {
	var s [32]byte
	prng.Squeeze(s[:])
	clampScalarBytes(&s)
	return XSK{scalar: s}
}

// PK returns the Montgomery public value of xsk: the Edwards base-point
// scalar multiple, converted to its Montgomery u-coordinate. This mirrors
// the original source's XSK::pk, which multiplies the Edwards base point
// and only then converts to Montgomery, rather than multiplying the
// Montgomery base point directly.
func (xsk XSK) PK() (XPK, error) {
	scalar, err := new(edwards25519.Scalar).SetBytesWithClamping(xsk.scalar[:])
	if err != nil {
		return XPK{}, err
	}
	p := new(edwards25519.Point).ScalarBaseMult(scalar)
	var out XPK
	copy(out.u[:], p.BytesMontgomery())
	return out, nil
}

// Exchange computes the X25519 shared secret between xsk and a peer's
// Montgomery public value.
func (xsk XSK) Exchange(peer XPK) (ExchangedSecret, error) {
	shared, err := curve25519.X25519(xsk.scalar[:], peer.u[:])
	if err != nil {
		return ExchangedSecret{}, ErrMalformedInput
	}
	var out ExchangedSecret
	copy(out.u[:], shared)
	return out, nil
}

// Wipe zeroes xsk's scalar. XSK is single-use: call this immediately
// after Exchange.
func (xsk *XSK) Wipe() {
	wipe(xsk.scalar[:])
}

// Bytes returns the Montgomery u-coordinate of xpk.
func (xpk XPK) Bytes() [32]byte {
	return xpk.u
}

// XPKFromBytes wraps a raw 32-byte Montgomery u-coordinate. Montgomery
// points have no canonical-encoding check analogous to Edwards
// decompression; any 32 bytes are accepted, per X25519.
func XPKFromBytes(b [32]byte) XPK {
	return XPK{u: b}
}

// Bytes returns the raw Montgomery u-coordinate of the exchanged secret.
func (es ExchangedSecret) Bytes() [32]byte {
	return es.u
}

// Wipe zeroes the exchanged secret.
func (es *ExchangedSecret) Wipe() {
	wipe(es.u[:])
}

// clampScalarBytes applies the Curve25519 scalar clamp in place: clear
// the low 3 bits (cofactor), clear the top bit, and set the second-
// highest bit.
func clampScalarBytes(b *[32]byte) {
	b[0] &= 248
	b[31] &= 127
	b[31] |= 64
}
