package bcsp

import (
	"crypto/rand"
	"testing"
)

func testSK(t *testing.T) SK {
	t.Helper()
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		t.Fatal(err)
	}
	sk, err := SKFromKey(raw)
	if err != nil {
		t.Fatal(err)
	}
	return sk
}

func TestEdLikeSignVerify(t *testing.T) {
	sk := testSK(t)
	pk := sk.PK()
	msg := []byte("authenticate this message")

	sig := sk.EdLikeSign(msg)
	if !pk.EdLikeVerify(msg, sig) {
		t.Fatal("valid signature failed to verify")
	}
}

func TestEdLikeVerifyRejectsTamperedMessage(t *testing.T) {
	sk := testSK(t)
	pk := sk.PK()
	msg := []byte("authenticate this message")
	sig := sk.EdLikeSign(msg)

	tampered := []byte("authenticate This message")
	if pk.EdLikeVerify(tampered, sig) {
		t.Fatal("signature verified against a tampered message")
	}
}

func TestEdLikeVerifyRejectsWrongKey(t *testing.T) {
	sk1 := testSK(t)
	sk2 := testSK(t)
	msg := []byte("authenticate this message")
	sig := sk1.EdLikeSign(msg)

	if sk2.PK().EdLikeVerify(msg, sig) {
		t.Fatal("signature verified under the wrong public key")
	}
}

func TestEdLikeSignIsDeterministic(t *testing.T) {
	sk := testSK(t)
	msg := []byte("same message, signed twice")
	sig1 := sk.EdLikeSign(msg)
	sig2 := sk.EdLikeSign(msg)
	if sig1.Bytes() != sig2.Bytes() {
		t.Fatal("signing the same message twice produced different signatures")
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	sk := testSK(t)
	msg := []byte("round trip this signature")
	sig := sk.EdLikeSign(msg)

	encoded := sig.Bytes()
	decoded, err := SignatureFromBytes(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bytes() != encoded {
		t.Fatal("signature did not round trip through its byte encoding")
	}
	if !sk.PK().EdLikeVerify(msg, decoded) {
		t.Fatal("decoded signature failed to verify")
	}
}

func TestSignatureFromBytesRejectsNonCanonicalScalar(t *testing.T) {
	var b [64]byte
	for i := 32; i < 64; i++ {
		b[i] = 0xff // far larger than the group order
	}
	if _, err := SignatureFromBytes(b); err == nil {
		t.Fatal("expected an error for a non-canonical s scalar")
	}
}
