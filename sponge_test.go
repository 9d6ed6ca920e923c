package bcsp

import (
	"bytes"
	"testing"
)

// verify the shipped HANDSHAKE_PRE_MASK_BYTES literal matches its sponge
// derivation, per spec.md §8 scenario 1 / §9's recommendation to compute
// and compare at test time.
func TestHandshakePreMaskMatchesDerivation(t *testing.T) {
	derived := OnceToArray32(tagHandshakePreMask, nil)
	if derived != handshakePreMaskBytes {
		t.Fatalf("derived mask %x does not match literal %x", derived, handshakePreMaskBytes)
	}
}

// distinct domain tags over identical input must yield different output.
func TestDomainTagsAreIndependent(t *testing.T) {
	in := []byte("same input")
	a := OnceToArray32(tagHandshakeCipher, in)
	b := OnceToArray32(tagReqKeyDerive, in)
	if a == b {
		t.Fatal("distinct domain tags produced identical output")
	}
}

func TestSqueezeXORRoundTrips(t *testing.T) {
	key := []byte("a 32 byte squeeze xor test key!")
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	enc := newSponge(tagFramePayloadCiph).ChainAbsorb(key)
	ciphertext := append([]byte(nil), plaintext...)
	enc.SqueezeXOR(ciphertext)
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	dec := newSponge(tagFramePayloadCiph).ChainAbsorb(key)
	recovered := append([]byte(nil), ciphertext...)
	dec.SqueezeXOR(recovered)
	if !bytes.Equal(recovered, plaintext) {
		t.Fatalf("recovered %q, want %q", recovered, plaintext)
	}
}

func TestSqueezeIsDeterministicPerTag(t *testing.T) {
	a := newSponge(tagDSASKDerive)
	b := newSponge(tagDSASKDerive)
	a.Absorb([]byte("input"))
	b.Absorb([]byte("input"))
	if a.Squeeze32() != b.Squeeze32() {
		t.Fatal("same tag and input produced different output")
	}
}

func TestSkipAdvancesLikeSqueeze(t *testing.T) {
	s := newSponge(tagHandshakeCipher)
	s.Absorb([]byte("whatever"))
	// Skip must not panic and must advance the sponge like Squeeze would.
	s.Skip(32)
	next := s.Squeeze32()
	s2 := newSponge(tagHandshakeCipher).ChainAbsorb([]byte("whatever"))
	s2.Squeeze32()
	if s2.Squeeze32() != next {
		t.Fatal("Skip did not advance the sponge the way Squeeze does")
	}
}
