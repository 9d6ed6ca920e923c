package bcsp

import "time"

// MaxLatency is the freshness window (in seconds) within which a peer's
// claimed handshake timestamp must fall relative to the local clock.
const MaxLatency int64 = 3

// Fixed wire sizes for each handshake flight, per spec.
const (
	chelloSize  = 32              // masked ephemeral Montgomery public key
	shelloSize  = 32 + pkInfoSize // masked ephemeral key || encrypted PKInfo
	cloginSize  = pkInfoSize      // encrypted PKInfo
	sloginvSize = loginVerifySize // encrypted LoginVerify
	shelloAhead = 32
)

// NowSeconds returns the current wall-clock time, seconds since the Unix
// epoch, from time.Now().Unix(). The handshake steps call it directly;
// connectors take no clock argument, so the clock cannot be replaced.
func NowSeconds() int64 { return time.Now().Unix() }

// FindUID maps an authenticated public key to a numeric user id. It is
// invoked exactly once per handshake, on the server side. Returning 0
// signals "unknown" to callers that check it themselves; the handshake
// state machine does not interpret the return value.
type FindUID func(PK) uint64

// FindUIDOrReject adapts a lookup that can fail into a FindUID plus a
// side channel recording whether the lookup failed. A failed lookup yields
// uid 0 and sets *failed; it does not return ErrUnknownUser and does not
// stop ServerBuilder.Login, which still completes. The core state machine
// never calls this itself — see SPEC_FULL.md's open-question resolution
// for why UnknownUser stays a caller concern.
func FindUIDOrReject(lookup func(PK) (uint64, bool)) (fn FindUID, failed *bool) {
	failed = new(bool)
	fn = func(pk PK) uint64 {
		uid, ok := lookup(pk)
		if !ok {
			*failed = true
			return 0
		}
		return uid
	}
	return fn, failed
}

// Identity bundles a long-term secret key with the 16-bit key-type
// discriminator carried alongside it on the wire, for forward-compatible
// identities. It is shareable by reference across connectors built from
// the same long-term key.
type Identity struct {
	KeyType uint16
	SK      SK
}

func (id *Identity) createPKInfo(ts int64) PKInfo {
	inner := PKInfo{TS: ts, KeyType: id.KeyType, PK: id.SK.PK()}
	sig := id.SK.EdLikeSign(inner.innerBytes()[:])
	inner.Sig = sig
	return inner
}

func (id *Identity) createLoginVerify(uid uint64) LoginVerify {
	b := uidBytes(uid)
	return LoginVerify{UID: uid, Sig: id.SK.EdLikeSign(b[:])}
}

// maskXPK XORs the handshake pre-mask constant into an ephemeral public
// key, in either direction (masking and unmasking are the same XOR).
func maskXPK(xpk XPK) [32]byte {
	b := xpk.Bytes()
	for i := range b {
		b[i] ^= handshakePreMaskBytes[i]
	}
	return b
}

func unmaskXPK(b [32]byte) XPK {
	var u [32]byte
	for i := range b {
		u[i] = b[i] ^ handshakePreMaskBytes[i]
	}
	return XPKFromBytes(u)
}

// ClientConnector drives the client side of the handshake. It owns the
// client's long-term identity and the PRNG sponge used to generate
// ephemeral keys; distinct connectors must be seeded independently.
type ClientConnector struct {
	identity *Identity
	prng     *Sponge
}

// NewClientConnector seeds a client connector from a 64-byte seed. The
// seed should come from a process-level source of entropy; it is
// absorbed once into a DH_SK_GEN_PRNG sponge that then deterministically
// produces every ephemeral key this connector ever generates.
func NewClientConnector(keyType uint16, csk [32]byte, seed [64]byte) (*ClientConnector, error) {
	sk, err := SKFromKey(csk)
	if err != nil {
		return nil, err
	}
	return &ClientConnector{
		identity: &Identity{KeyType: keyType, SK: sk},
		prng:     newSponge(tagDHSKGenPRNG).ChainAbsorb(seed[:]),
	}, nil
}

// ServerConnector drives the server side of the handshake.
type ServerConnector struct {
	identity *Identity
	prng     *Sponge
}

// NewServerConnector seeds a server connector, symmetric to
// NewClientConnector.
func NewServerConnector(keyType uint16, ssk [32]byte, seed [64]byte) (*ServerConnector, error) {
	sk, err := SKFromKey(ssk)
	if err != nil {
		return nil, err
	}
	return &ServerConnector{
		identity: &Identity{KeyType: keyType, SK: sk},
		prng:     newSponge(tagDHSKGenPRNG).ChainAbsorb(seed[:]),
	}, nil
}

// ClientBuilderA is the client's state after sending ClientHello, having
// retained the expected server public key and its own ephemeral scalar.
type ClientBuilderA struct {
	identity *Identity
	spk      PK
	cxsk     XSK
}

// Connect sends Flight 1 (ClientHello): a fresh ephemeral Montgomery
// public key, masked with the handshake pre-mask constant.
func (c *ClientConnector) Connect(serverPK [32]byte) (ClientBuilderA, [chelloSize]byte, error) {
	spk, err := PKFromBytes(serverPK)
	if err != nil {
		return ClientBuilderA{}, [chelloSize]byte{}, err
	}
	cxsk := GenerateXSK(c.prng)
	cxpk, err := cxsk.PK()
	if err != nil {
		return ClientBuilderA{}, [chelloSize]byte{}, err
	}
	return ClientBuilderA{identity: c.identity, spk: spk, cxsk: cxsk}, maskXPK(cxpk), nil
}

// ServerBuilder is the server's state after sending ServerHello, having
// retained the shared secret and the handshake cipher keyed from it.
type ServerBuilder struct {
	identity *Identity
	connKey  ExchangedSecret
	cipher   *Sponge
}

// Accept handles Flight 1 and sends Flight 2 (ServerHello): a fresh
// ephemeral Montgomery public key masked the same way, followed by the
// server's signed identity encrypted under the handshake cipher keyed
// from the freshly computed shared secret.
func (sv *ServerConnector) Accept(chello [chelloSize]byte) (ServerBuilder, [shelloSize]byte, error) {
	ts := NowSeconds()
	cxpk := unmaskXPK(chello)

	sxsk := GenerateXSK(sv.prng)
	sxpk, err := sxsk.PK()
	if err != nil {
		return ServerBuilder{}, [shelloSize]byte{}, err
	}
	connKey, err := sxsk.Exchange(cxpk)
	sxsk.Wipe()
	if err != nil {
		return ServerBuilder{}, [shelloSize]byte{}, err
	}

	cipher := newSponge(tagHandshakeCipher)
	keyBytes := connKey.Bytes()
	cipher.Absorb(keyBytes[:])

	spki := sv.identity.createPKInfo(ts)
	spkiBytes := spki.Bytes()
	cipher.SqueezeXOR(spkiBytes[:])

	var out [shelloSize]byte
	masked := maskXPK(sxpk)
	copy(out[:shelloAhead], masked[:])
	copy(out[shelloAhead:], spkiBytes[:])

	return ServerBuilder{identity: sv.identity, connKey: connKey, cipher: cipher}, out, nil
}

// ClientBuilderB is the client's state after sending ClientLogin, having
// authenticated the server's identity and retained the handshake cipher.
type ClientBuilderB struct {
	spk     PK
	connKey ExchangedSecret
	cipher  *Sponge
}

// Login handles Flight 2 and sends Flight 3 (ClientLogin). It computes
// the shared secret, authenticates the server's revealed identity
// (matching public key, valid signature, fresh timestamp — any failure
// is fatal), then reveals and signs its own identity through the same
// handshake cipher.
func (b ClientBuilderA) Login(shello [shelloSize]byte) (ClientBuilderB, [cloginSize]byte, error) {
	ts := NowSeconds()

	var maskedSXPK [32]byte
	copy(maskedSXPK[:], shello[:shelloAhead])
	sxpk := unmaskXPK(maskedSXPK)

	connKey, err := b.cxsk.Exchange(sxpk)
	b.cxsk.Wipe()
	if err != nil {
		return ClientBuilderB{}, [cloginSize]byte{}, err
	}

	cipher := newSponge(tagHandshakeCipher)
	keyBytes := connKey.Bytes()
	cipher.Absorb(keyBytes[:])

	var spkiBytes [pkInfoSize]byte
	copy(spkiBytes[:], shello[shelloAhead:])
	cipher.SqueezeXOR(spkiBytes[:])

	spki, err := PKInfoFromBytes(spkiBytes)
	if err != nil {
		return ClientBuilderB{}, [cloginSize]byte{}, err
	}
	if !b.spk.Equal(spki.PK) {
		return ClientBuilderB{}, [cloginSize]byte{}, ErrIdentityMismatch
	}
	innerBytes := spki.innerBytes()
	if !b.spk.EdLikeVerify(innerBytes[:], spki.Sig) {
		return ClientBuilderB{}, [cloginSize]byte{}, ErrSignatureInvalid
	}
	if abs64(ts-spki.TS) > MaxLatency {
		return ClientBuilderB{}, [cloginSize]byte{}, ErrStale
	}

	cpki := b.identity.createPKInfo(ts)
	out := cpki.Bytes()
	cipher.SqueezeXOR(out[:])

	return ClientBuilderB{spk: b.spk, connKey: connKey, cipher: cipher}, out, nil
}

// Login handles Flight 3 and sends Flight 4 (ServerLoginVerify). It
// decrypts and authenticates the client's revealed identity, looks up
// its user id via find_uid, and transitions to Connected.
func (sb ServerBuilder) Login(clogin [cloginSize]byte, find FindUID) (*ConnectionState, [sloginvSize]byte, error) {
	ts := NowSeconds()

	cpkiBytes := clogin
	sb.cipher.SqueezeXOR(cpkiBytes[:])

	cpki, err := PKInfoFromBytes(cpkiBytes)
	if err != nil {
		return nil, [sloginvSize]byte{}, err
	}
	innerBytes := cpki.innerBytes()
	if !cpki.PK.EdLikeVerify(innerBytes[:], cpki.Sig) {
		return nil, [sloginvSize]byte{}, ErrSignatureInvalid
	}
	if abs64(ts-cpki.TS) > MaxLatency {
		return nil, [sloginvSize]byte{}, ErrStale
	}

	uid := find(cpki.PK)
	lv := sb.identity.createLoginVerify(uid)
	out := lv.Bytes()
	sb.cipher.SqueezeXOR(out[:])

	conn := newConnectionState(peerServer, uid, sb.connKey)
	return conn, out, nil
}

// FinishLogin handles Flight 4, completing the client side of the
// handshake. The server's LoginVerify signature is checked under the
// already-authenticated server public key from Flight 2.
func (b ClientBuilderB) FinishLogin(slgv [sloginvSize]byte) (*ConnectionState, error) {
	lvBytes := slgv
	b.cipher.SqueezeXOR(lvBytes[:])

	lv, err := LoginVerifyFromBytes(lvBytes)
	if err != nil {
		return nil, err
	}
	uidOnly := uidBytes(lv.UID)
	if !b.spk.EdLikeVerify(uidOnly[:], lv.Sig) {
		return nil, ErrSignatureInvalid
	}

	conn := newConnectionState(peerClient, lv.UID, b.connKey)
	return conn, nil
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
