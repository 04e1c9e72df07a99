package ioloop

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/vswitchd/vswitch/forwarding"
	"github.com/vswitchd/vswitch/port"
)

// macLen is the byte length of one MAC address in the startup control
// message.
const macLen = 6

// ErrMalformedControl is returned when the first control message's
// payload is not exactly macLen bytes per configured port.
var ErrMalformedControl = errors.New("ioloop: malformed control message")

// A Loop drives the single-threaded dispatch described in spec.md §4.5:
// consume one inbound Envelope at a time, route it to the port table or
// forwarding engine, and emit outbound Envelopes before consuming the
// next inbound message.
type Loop struct {
	Ports  *port.Table
	Engine *forwarding.Engine
	Debug  *log.Logger // per-frame drop diagnostics; nil disables them

	in  io.Reader
	out io.Writer

	gotMACs bool
}

// NewLoop constructs a Loop reading inbound envelopes from in and
// writing outbound envelopes to out.
func NewLoop(ports *port.Table, engine *forwarding.Engine, in io.Reader, out io.Writer) *Loop {
	return &Loop{Ports: ports, Engine: engine, in: in, out: out}
}

// Run consumes inbound envelopes until EOF, processing each to
// completion (including all of its egress emissions) before reading the
// next. It returns nil on a clean EOF, and a non-nil error for any
// fatal condition (malformed framing, a write failure) per spec.md §7.
func (l *Loop) Run() error {
	for {
		env, err := ReadEnvelope(l.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := l.dispatch(env); err != nil {
			return err
		}
	}
}

func (l *Loop) dispatch(env *Envelope) error {
	if env.Type == ControlType {
		return l.handleControl(env.Payload)
	}

	if int(env.Type) >= 1 && int(env.Type) <= l.Ports.Len() {
		return l.handleFrame(int(env.Type), env.Payload)
	}

	// An envelope type outside [0, N] cannot be routed; the driver
	// never produces one, so silently ignore it rather than treating it
	// as fatal framing corruption.
	return nil
}

// handleControl processes a type-0 control message. The first such
// message delivers N concatenated 6-byte MAC addresses for ports 1..N;
// every subsequent control message is command-line text the core has
// no runtime use for and ignores.
func (l *Loop) handleControl(payload []byte) error {
	if l.gotMACs {
		return nil
	}

	n := l.Ports.Len()
	if len(payload) != n*macLen {
		return fmt.Errorf("%w: expected %d bytes for %d ports, got %d", ErrMalformedControl, n*macLen, n, len(payload))
	}

	for i := 0; i < n; i++ {
		mac := payload[i*macLen : (i+1)*macLen]
		if err := l.Ports.SetMAC(i+1, append([]byte(nil), mac...)); err != nil {
			return err
		}
	}
	l.gotMACs = true
	return nil
}

// handleFrame routes one frame received on ingress port pIn through the
// forwarding engine, then emits every resulting transformed frame to
// its egress port. A drop is logged at debug level (if Debug is set)
// and is never fatal; only a write failure terminates the loop.
func (l *Loop) handleFrame(pIn int, payload []byte) error {
	egresses, err := l.Engine.Process(pIn, payload)
	if err != nil {
		if l.Debug != nil {
			l.Debug.Printf("dropped frame on port %d: %v", pIn, err)
		}
		return nil
	}

	for _, eg := range egresses {
		b, err := eg.Frame.MarshalBinary()
		if err != nil {
			return err
		}

		out := &Envelope{Type: uint16(eg.Port), Payload: b}
		if err := WriteEnvelope(l.out, out); err != nil {
			return err
		}
	}
	return nil
}
