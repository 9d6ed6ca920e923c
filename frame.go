package bcsp

import (
	"crypto/subtle"
	"encoding/binary"
)

// FrMaxLen is the maximum size of a single frame on the wire, headers
// included.
const FrMaxLen = 0x10000

// FrPayloadMax is the largest payload a single frame can carry: the
// maximum wire size minus both fixed headers.
const FrPayloadMax = FrMaxLen - frameAheadHeaderSize - frameBehindHeaderSize

// EncodeMessage splits msg into one or more frames for reqID, encrypting
// each under reqID's payload cipher and MAC-ing it, then wrapping it in a
// header keyed by the connection's shared header cipher/MAC. Frames must
// be transmitted, and will be decoded, in the returned order: cipher and
// MAC sponges advance monotonically and cannot be rewound.
//
// An empty msg still produces exactly one zero-payload frame, so that
// every call has an observable wire effect and frame numbering always
// starts from a defined frame 0 (see SPEC_FULL.md's open-question
// resolution).
func (c *ConnectionState) EncodeMessage(reqID RequestID, msg []byte) ([][]byte, error) {
	r := c.requestState(reqID)
	if r.exhausted {
		return nil, ErrRequestExhausted
	}
	msgID := r.nextMsgID
	r.nextMsgID++
	if r.nextMsgID == 0 {
		r.exhausted = true
	}

	numFrames := 1
	if len(msg) > 0 {
		numFrames = (len(msg) + FrPayloadMax - 1) / FrPayloadMax
	}

	frames := make([][]byte, 0, numFrames)
	for frameID := 0; frameID < numFrames; frameID++ {
		start := frameID * FrPayloadMax
		end := start + FrPayloadMax
		if end > len(msg) {
			end = len(msg)
		}
		chunk := append([]byte(nil), msg[start:end]...)

		r.cipher.SqueezeXOR(chunk)

		r.mac.Absorb(chunk)
		payMAC := r.mac.Squeeze32()

		behind := FrameBehindHeader{MAC: payMAC, MsgID: msgID, FrameID: uint16(frameID)}

		frameLen := frameAheadHeaderSize + len(chunk) + frameBehindHeaderSize
		var hdrMACInput [4]byte
		binary.LittleEndian.PutUint16(hdrMACInput[0:2], uint16(reqID))
		binary.LittleEndian.PutUint16(hdrMACInput[2:4], uint16(frameLen))
		c.header.mac.Absorb(hdrMACInput[:])
		hdrMAC := c.header.mac.Squeeze32()

		ahead := FrameAheadHeader{ReqID: uint16(reqID), FrameLen: uint16(frameLen), MAC: hdrMAC}
		aheadBytes := ahead.Bytes()
		c.header.cipher.SqueezeXOR(aheadBytes[:])

		behindBytes := behind.Bytes()
		r.cipher.SqueezeXOR(behindBytes[:])

		frame := make([]byte, 0, frameLen)
		frame = append(frame, aheadBytes[:]...)
		frame = append(frame, chunk...)
		frame = append(frame, behindBytes[:]...)
		frames = append(frames, frame)
	}
	return frames, nil
}

// DecodedFrame is the result of successfully decoding one frame.
type DecodedFrame struct {
	ReqID   RequestID
	MsgID   uint16
	FrameID uint16
	Payload []byte
	// Last reports whether this frame's payload is shorter than
	// FrPayloadMax, the signal that no further frames follow for this
	// message. A message whose length is an exact multiple of
	// FrPayloadMax is ambiguous under this rule: its final frame is full
	// and reports Last as false. Such
	// messages are outside what this field can disambiguate and callers
	// with that requirement should frame their own message-length
	// envelope above this layer.
	Last bool
}

// DecodeFrame reverses EncodeMessage for a single frame, recomputing
// both MACs and comparing them in constant time before returning any
// plaintext. Any MAC mismatch is fatal: the header and request sponges
// have already advanced past the point of the failure and cannot be
// rewound, so the ConnectionState must not be reused after an error.
func (c *ConnectionState) DecodeFrame(frame []byte) (DecodedFrame, error) {
	if len(frame) < frameAheadHeaderSize+frameBehindHeaderSize {
		return DecodedFrame{}, ErrMalformedInput
	}

	aheadBytes := [frameAheadHeaderSize]byte(frame[:frameAheadHeaderSize])
	c.header.cipher.SqueezeXOR(aheadBytes[:])
	ahead := FrameAheadHeaderFromBytes(aheadBytes)

	// frame_len is a u16, so a full FrMaxLen-byte frame carries 0: the
	// length is compared modulo 2^16, with FrMaxLen as the upper bound.
	if len(frame) > FrMaxLen || ahead.FrameLen != uint16(len(frame)) {
		return DecodedFrame{}, ErrMalformedInput
	}

	var hdrMACInput [4]byte
	binary.LittleEndian.PutUint16(hdrMACInput[0:2], ahead.ReqID)
	binary.LittleEndian.PutUint16(hdrMACInput[2:4], uint16(len(frame)))
	c.header.mac.Absorb(hdrMACInput[:])
	expectHdrMAC := c.header.mac.Squeeze32()
	if subtle.ConstantTimeCompare(expectHdrMAC[:], ahead.MAC[:]) != 1 {
		return DecodedFrame{}, ErrMACInvalid
	}

	reqID, err := NewRequestID(ahead.ReqID)
	if err != nil {
		return DecodedFrame{}, err
	}
	r := c.requestState(reqID)

	payloadLen := len(frame) - frameAheadHeaderSize - frameBehindHeaderSize
	if payloadLen < 0 {
		return DecodedFrame{}, ErrMalformedInput
	}
	ciphertext := append([]byte(nil), frame[frameAheadHeaderSize:frameAheadHeaderSize+payloadLen]...)
	behindBytes := [frameBehindHeaderSize]byte(frame[frameAheadHeaderSize+payloadLen:])

	r.mac.Absorb(ciphertext)
	expectPayMAC := r.mac.Squeeze32()

	plaintext := ciphertext
	r.cipher.SqueezeXOR(plaintext)
	r.cipher.SqueezeXOR(behindBytes[:])
	behind := FrameBehindHeaderFromBytes(behindBytes)

	if subtle.ConstantTimeCompare(expectPayMAC[:], behind.MAC[:]) != 1 {
		return DecodedFrame{}, ErrMACInvalid
	}

	return DecodedFrame{
		ReqID:   reqID,
		MsgID:   behind.MsgID,
		FrameID: behind.FrameID,
		Payload: plaintext,
		Last:    payloadLen < FrPayloadMax,
	}, nil
}
