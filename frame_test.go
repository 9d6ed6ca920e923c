package bcsp

import (
	"bytes"
	"testing"
)

func mirroredConnections(t *testing.T) (sender, receiver *ConnectionState) {
	t.Helper()
	var secretBytes [32]byte
	for i := range secretBytes {
		secretBytes[i] = byte(i + 1)
	}
	sender = newConnectionState(peerClient, 1, ExchangedSecret{u: secretBytes})
	receiver = newConnectionState(peerServer, 1, ExchangedSecret{u: secretBytes})
	return sender, receiver
}

func TestFrameRoundTrip(t *testing.T) {
	sender, receiver := mirroredConnections(t)
	reqID, err := NewRequestID(1)
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("a short message that fits in a single frame")
	frames, err := sender.EncodeMessage(reqID, msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}

	decoded, err := receiver.DecodeFrame(frames[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded.Payload, msg) {
		t.Fatalf("recovered payload %q, want %q", decoded.Payload, msg)
	}
	if decoded.ReqID != reqID || decoded.MsgID != 0 || decoded.FrameID != 0 || !decoded.Last {
		t.Fatalf("unexpected frame metadata: %+v", decoded)
	}
}

func TestFrameRoundTripMultiFrameMessage(t *testing.T) {
	sender, receiver := mirroredConnections(t)
	reqID, err := NewRequestID(1)
	if err != nil {
		t.Fatal(err)
	}

	msg := make([]byte, FrPayloadMax*2+100)
	for i := range msg {
		msg[i] = byte(i)
	}

	frames, err := sender.EncodeMessage(reqID, msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}

	var reassembled []byte
	for i, frame := range frames {
		decoded, err := receiver.DecodeFrame(frame)
		if err != nil {
			t.Fatal(err)
		}
		if decoded.MsgID != 0 {
			t.Fatalf("frame %d: msg id = %d, want 0", i, decoded.MsgID)
		}
		if int(decoded.FrameID) != i {
			t.Fatalf("frame %d: frame id = %d, want %d", i, decoded.FrameID, i)
		}
		wantLast := i == len(frames)-1
		if decoded.Last != wantLast {
			t.Fatalf("frame %d: last = %v, want %v", i, decoded.Last, wantLast)
		}
		reassembled = append(reassembled, decoded.Payload...)
	}
	if !bytes.Equal(reassembled, msg) {
		t.Fatal("reassembled message does not match original")
	}
}

func TestEmptyMessageProducesOneFrame(t *testing.T) {
	sender, receiver := mirroredConnections(t)
	reqID, err := NewRequestID(2)
	if err != nil {
		t.Fatal(err)
	}

	frames, err := sender.EncodeMessage(reqID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames for empty message, want 1", len(frames))
	}

	decoded, err := receiver.DecodeFrame(frames[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Payload) != 0 {
		t.Fatalf("got payload %v, want empty", decoded.Payload)
	}
	if !decoded.Last {
		t.Fatal("single empty frame should report Last")
	}
}

func TestFrameTamperIsRejected(t *testing.T) {
	sender, receiver := mirroredConnections(t)
	reqID, err := NewRequestID(1)
	if err != nil {
		t.Fatal(err)
	}

	msg := make([]byte, 100)
	frames, err := sender.EncodeMessage(reqID, msg)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte(nil), frames[0]...)
	tampered[4] ^= 0x01 // flip a bit inside the (encrypted) ahead-header mac field

	if _, err := receiver.DecodeFrame(tampered); err != ErrMACInvalid {
		t.Fatalf("got error %v, want ErrMACInvalid", err)
	}
}

func TestRequestsHaveIndependentKeys(t *testing.T) {
	sender, receiver := mirroredConnections(t)
	req1, _ := NewRequestID(1)
	req2, _ := NewRequestID(2)

	msg := []byte("identical payload on two different requests")
	frames1, err := sender.EncodeMessage(req1, msg)
	if err != nil {
		t.Fatal(err)
	}
	frames2, err := sender.EncodeMessage(req2, msg)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(frames1[0], frames2[0]) {
		t.Fatal("two different requests produced identical ciphertext for the same plaintext")
	}

	d1, err := receiver.DecodeFrame(frames1[0])
	if err != nil {
		t.Fatal(err)
	}
	d2, err := receiver.DecodeFrame(frames2[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d1.Payload, msg) || !bytes.Equal(d2.Payload, msg) {
		t.Fatal("round trip failed across independently keyed requests")
	}
}

func TestZeroRequestIDRejected(t *testing.T) {
	if _, err := NewRequestID(0); err != ErrZeroRequestID {
		t.Fatalf("got error %v, want ErrZeroRequestID", err)
	}
}
