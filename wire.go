package bcsp

import "encoding/binary"

// PKInfo binds a timestamp, key-type discriminator, and public key
// together with the owner's signature over the 42-byte inner tuple.
// Wire layout: ts(8) || keytype(2) || pk(32) || R(32) || s(32) = 106 bytes.
type PKInfo struct {
	TS      int64
	KeyType uint16
	PK      PK
	Sig     Signature
}

const pkInfoSize = 8 + 2 + 32 + 64

// Bytes encodes info to its fixed 106-byte wire form.
func (info PKInfo) Bytes() [pkInfoSize]byte {
	var out [pkInfoSize]byte
	binary.LittleEndian.PutUint64(out[0:8], uint64(info.TS))
	binary.LittleEndian.PutUint16(out[8:10], info.KeyType)
	copy(out[10:42], info.PK.Bytes()[:])
	copy(out[42:106], info.Sig.Bytes()[:])
	return out
}

// innerBytes encodes only the signed tuple (ts, keytype, pk), the 42
// bytes that the owner's signature ranges over.
func (info PKInfo) innerBytes() [42]byte {
	var out [42]byte
	binary.LittleEndian.PutUint64(out[0:8], uint64(info.TS))
	binary.LittleEndian.PutUint16(out[8:10], info.KeyType)
	copy(out[10:42], info.PK.Bytes()[:])
	return out
}

// PKInfoFromBytes decodes a 106-byte PKInfo. It does not verify the
// embedded signature; callers must call PK.EdLikeVerify themselves
// against the post-decryption bytes, per the handshake's verification
// order.
func PKInfoFromBytes(b [pkInfoSize]byte) (PKInfo, error) {
	pk, err := PKFromBytes([32]byte(b[10:42]))
	if err != nil {
		return PKInfo{}, err
	}
	sig, err := SignatureFromBytes([64]byte(b[42:106]))
	if err != nil {
		return PKInfo{}, err
	}
	return PKInfo{
		TS:      int64(binary.LittleEndian.Uint64(b[0:8])),
		KeyType: binary.LittleEndian.Uint16(b[8:10]),
		PK:      pk,
	}.withSig(sig), nil
}

func (info PKInfo) withSig(sig Signature) PKInfo {
	info.Sig = sig
	return info
}

// LoginVerify binds a user id together with the server's signature over
// its 8 little-endian bytes. Wire layout: uid(8) || R(32) || s(32) = 72
// bytes.
type LoginVerify struct {
	UID uint64
	Sig Signature
}

const loginVerifySize = 8 + 64

// Bytes encodes v to its fixed 72-byte wire form.
func (v LoginVerify) Bytes() [loginVerifySize]byte {
	var out [loginVerifySize]byte
	binary.LittleEndian.PutUint64(out[0:8], v.UID)
	copy(out[8:72], v.Sig.Bytes()[:])
	return out
}

// uidBytes encodes only the 8-byte uid that the server's signature
// ranges over.
func uidBytes(uid uint64) [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], uid)
	return out
}

// LoginVerifyFromBytes decodes a 72-byte LoginVerify. Signature
// verification is the caller's responsibility, same as PKInfoFromBytes.
func LoginVerifyFromBytes(b [loginVerifySize]byte) (LoginVerify, error) {
	sig, err := SignatureFromBytes([64]byte(b[8:72]))
	if err != nil {
		return LoginVerify{}, err
	}
	return LoginVerify{
		UID: binary.LittleEndian.Uint64(b[0:8]),
		Sig: sig,
	}, nil
}

// FrameAheadHeader is the 36-byte header that precedes a frame's
// payload: req_id(2) || frame_len(2) || mac(32).
type FrameAheadHeader struct {
	ReqID    uint16
	FrameLen uint16
	MAC      [32]byte
}

const frameAheadHeaderSize = 2 + 2 + 32

func (h FrameAheadHeader) Bytes() [frameAheadHeaderSize]byte {
	var out [frameAheadHeaderSize]byte
	binary.LittleEndian.PutUint16(out[0:2], h.ReqID)
	binary.LittleEndian.PutUint16(out[2:4], h.FrameLen)
	copy(out[4:36], h.MAC[:])
	return out
}

func FrameAheadHeaderFromBytes(b [frameAheadHeaderSize]byte) FrameAheadHeader {
	var h FrameAheadHeader
	h.ReqID = binary.LittleEndian.Uint16(b[0:2])
	h.FrameLen = binary.LittleEndian.Uint16(b[2:4])
	copy(h.MAC[:], b[4:36])
	return h
}

// FrameBehindHeader is the 36-byte trailer that follows a frame's
// payload: mac(32) || msg_id(2) || frame_id(2).
type FrameBehindHeader struct {
	MAC     [32]byte
	MsgID   uint16
	FrameID uint16
}

const frameBehindHeaderSize = 32 + 2 + 2

func (h FrameBehindHeader) Bytes() [frameBehindHeaderSize]byte {
	var out [frameBehindHeaderSize]byte
	copy(out[0:32], h.MAC[:])
	binary.LittleEndian.PutUint16(out[32:34], h.MsgID)
	binary.LittleEndian.PutUint16(out[34:36], h.FrameID)
	return out
}

func FrameBehindHeaderFromBytes(b [frameBehindHeaderSize]byte) FrameBehindHeader {
	var h FrameBehindHeader
	copy(h.MAC[:], b[0:32])
	h.MsgID = binary.LittleEndian.Uint16(b[32:34])
	h.FrameID = binary.LittleEndian.Uint16(b[34:36])
	return h
}
