// Package ioloop implements the framing and dispatch loop that sits
// between the driver's length-prefixed byte stream and the forwarding
// engine: it deframes inbound envelopes, routes control messages and
// per-port frames, and reframes outbound emissions.
package ioloop

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ControlType is the envelope type reserved for the control channel
// (port index 0).
const ControlType = 0

// headerLen is the size of the size+type envelope header.
const headerLen = 4

// MaxEnvelopeLen is the largest envelope, header included, the wire
// format can carry: the size field is a 16-bit unsigned integer.
const MaxEnvelopeLen = 1<<16 - 1

// ErrProtocolFraming is returned when an inbound envelope's declared
// size is smaller than the header or larger than MaxEnvelopeLen. It is
// fatal: the loop terminates rather than attempting to resynchronize.
var ErrProtocolFraming = errors.New("ioloop: malformed envelope framing")

// ErrWriteFailure wraps any error returned while writing an outbound
// envelope. It is fatal.
var ErrWriteFailure = errors.New("ioloop: outbound write failed")

// An Envelope is one length-prefixed message in either direction.
//
//	+---------+---------+--------------------------------+
//	| size BE | type BE |       payload (size-4 bytes)   |
//	| u16     | u16     |                                |
//	+---------+---------+--------------------------------+
//
// Inbound, Type is 0 for control messages or a 1-based port index for a
// frame received on that port. Outbound, Type is the egress port index
// for a frame, or 0 for diagnostic text.
type Envelope struct {
	Type    uint16
	Payload []byte
}

// MarshalBinary encodes e into its wire form. It returns an error if the
// resulting envelope would exceed MaxEnvelopeLen.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	total := headerLen + len(e.Payload)
	if total > MaxEnvelopeLen {
		return nil, fmt.Errorf("ioloop: envelope of %d bytes exceeds MaxEnvelopeLen", total)
	}

	b := make([]byte, total)
	binary.BigEndian.PutUint16(b[0:2], uint16(total))
	binary.BigEndian.PutUint16(b[2:4], e.Type)
	copy(b[4:], e.Payload)
	return b, nil
}

// ReadEnvelope reads one length-prefixed Envelope from r.
//
// io.EOF is returned verbatim when the stream ends cleanly between
// envelopes (no partial header or payload has been read). Any other
// read failure, or a declared size outside [headerLen, MaxEnvelopeLen],
// returns an error wrapping ErrProtocolFraming.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading header: %v", ErrProtocolFraming, err)
	}

	size := binary.BigEndian.Uint16(hdr[:2])
	if int(size) < headerLen {
		return nil, fmt.Errorf("%w: declared size %d smaller than header", ErrProtocolFraming, size)
	}

	payload := make([]byte, int(size)-headerLen)
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("%w: reading payload: %v", ErrProtocolFraming, err)
		}
	}

	typ := binary.BigEndian.Uint16(hdr[2:4])
	return &Envelope{Type: typ, Payload: payload}, nil
}

// WriteEnvelope writes e to w in wire form.
func WriteEnvelope(w io.Writer, e *Envelope) error {
	b, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	return nil
}
