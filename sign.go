package bcsp

import (
	"filippo.io/edwards25519"
)

// Signature is an Ed-like (R, s) signature: a compressed Edwards point R
// and a canonical scalar s, always handled as the 64-byte encoding
// R || s.
type Signature struct {
	r *edwards25519.Point
	s *edwards25519.Scalar
}

// EdLikeSign produces a deterministic, nonce-misuse-resistant signature
// over msg using sk. The nonce baked into sk at derivation time stands in
// for the random per-signature nonce Ed25519 would otherwise need.
func (sk SK) EdLikeSign(msg []byte) Signature {
	rScalar, r := calcR(sk.nonce, msg)
	pk := sk.PK()
	k := calcK(r, pk, msg)
	s := new(edwards25519.Scalar).MultiplyAdd(sk.scalar, k, rScalar)
	return Signature{r: r, s: s}
}

// EdLikeVerify checks sig against msg under pk.
func (pk PK) EdLikeVerify(msg []byte, sig Signature) bool {
	k := calcK(sig.r, pk, msg)
	negPK := new(edwards25519.Point).Negate(pk.point)
	rPrime := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(k, negPK, sig.s)
	return rPrime.Equal(sig.r) == 1
}

// calcR derives the deterministic per-signature scalar and its
// compressed Edwards point from the signer's persistent nonce and the
// message being signed.
func calcR(nonce [32]byte, msg []byte) (*edwards25519.Scalar, *edwards25519.Point) {
	s := newSponge(tagDSAEdSignRHash)
	s.Absorb(nonce[:])
	s.Absorb(msg)
	hash := s.Squeeze32()
	rScalar, err := new(edwards25519.Scalar).SetBytesWithClamping(hash[:])
	if err != nil {
		panic("bcsp: clamp of sponge output cannot fail: " + err.Error())
	}
	wipe(hash[:])
	r := new(edwards25519.Point).ScalarBaseMult(rScalar)
	return rScalar, r
}

// calcK binds R, the signer's public key, and the message into the
// Fiat-Shamir-style challenge scalar, following the same challenge
// binding as Ed25519.
func calcK(r *edwards25519.Point, pk PK, msg []byte) *edwards25519.Scalar {
	s := newSponge(tagDSAEdSignKHash)
	s.Absorb(r.Bytes())
	s.Absorb(pk.point.Bytes())
	s.Absorb(msg)
	hash := s.Squeeze32()
	k, err := new(edwards25519.Scalar).SetBytesWithClamping(hash[:])
	if err != nil {
		panic("bcsp: clamp of sponge output cannot fail: " + err.Error())
	}
	wipe(hash[:])
	return k
}

// Bytes encodes sig as R (32 bytes) || s (32 bytes).
func (sig Signature) Bytes() [64]byte {
	var out [64]byte
	copy(out[:32], sig.r.Bytes())
	copy(out[32:], sig.s.Bytes())
	return out
}

// SignatureFromBytes decodes a 64-byte R || s signature. s must be the
// canonical scalar representative mod the group order, and R must be a
// valid compressed Edwards point; either failing is MalformedInput.
func SignatureFromBytes(b [64]byte) (Signature, error) {
	r, err := new(edwards25519.Point).SetBytes(b[:32])
	if err != nil {
		return Signature{}, ErrMalformedInput
	}
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(b[32:])
	if err != nil {
		return Signature{}, ErrMalformedInput
	}
	return Signature{r: r, s: s}, nil
}
