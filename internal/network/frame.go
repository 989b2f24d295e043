// Package network handles the wire protocol: length-prefixed framing over
// TCP and the tagged message schemas exchanged between server and clients
package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize caps a single frame's payload. 1MB is far beyond any
// legitimate state snapshot.
const MaxFrameSize = 1 << 20

// ErrConnClosed reports that the peer closed the connection cleanly before
// the start of a frame. A close mid-frame is a real error instead.
var ErrConnClosed = errors.New("connection closed")

// WriteFrame writes a 4-byte big-endian length prefix followed by the
// payload. The prefix and payload are written as one buffer so a frame is
// never interleaved with another writer's prefix.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds maximum %d", len(payload), MaxFrameSize)
	}

	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame, blocking until the full
// payload has arrived. It returns ErrConnClosed if the peer closed the
// connection before sending any part of a frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, ErrConnClosed
		}
		return nil, fmt.Errorf("failed to read frame length: %w", err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds maximum %d", length, MaxFrameSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}
	return payload, nil
}
