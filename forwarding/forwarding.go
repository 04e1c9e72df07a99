// Package forwarding implements the switch's classification and
// forwarding engine: given an ingress frame and the port it arrived on,
// decide which ports it must be emitted on and how each emission's
// 802.1Q tag must be transformed.
//
// The engine is stateless apart from the learning table it is given; it
// never buffers or reorders frames.
package forwarding

import (
	"errors"
	"fmt"

	"github.com/vswitchd/vswitch/ethernet"
	"github.com/vswitchd/vswitch/learning"
	"github.com/vswitchd/vswitch/port"
)

// Drop reasons. A drop is never fatal: the engine simply produces no
// egress frames for that ingress frame and processing continues with
// the next one.
var (
	// ErrBadSource is returned when the frame's source MAC is
	// multicast/broadcast.
	ErrBadSource = errors.New("forwarding: multicast/broadcast source MAC")

	// ErrVlanMismatch is returned when the ingress port is not a member
	// of the frame's VLAN: a tagged frame whose ingress port has no
	// tagged membership of that VID, or an untagged frame on a port
	// with no untagged membership.
	ErrVlanMismatch = errors.New("forwarding: ingress port not a member of frame's VLAN")

	// ErrCrossVlanLearned is returned when the destination MAC is
	// learned on a port that is not in the ingress VLAN's egress set.
	// The frame is dropped outright; it is never flooded as a fallback.
	ErrCrossVlanLearned = errors.New("forwarding: learned egress port outside ingress VLAN")
)

// An Egress is one transformed frame destined for one port.
type Egress struct {
	Port  int
	Frame *ethernet.Frame
}

// An Engine ties a port Table and a MAC learning Table together to
// classify and forward frames. An Engine is single-threaded: callers
// must not invoke Process concurrently.
type Engine struct {
	Ports   *port.Table
	Learned *learning.Table
}

// NewEngine constructs an Engine over the given port table and learning
// table.
func NewEngine(ports *port.Table, learned *learning.Table) *Engine {
	return &Engine{Ports: ports, Learned: learned}
}

// Process classifies and computes the egress set for a single frame
// arriving on ingress port pIn, given its raw bytes.
//
// On success it returns zero or more Egress values to emit, in no
// particular order (the ioloop is responsible for issuing them in the
// order returned). On a drop, it returns a nil slice and one of
// ethernet.ErrShortFrame, ErrBadSource, ErrVlanMismatch, or
// ErrCrossVlanLearned: all non-fatal per spec.md §7, logged by the
// caller at its discretion and then ignored.
func (e *Engine) Process(pIn int, raw []byte) ([]Egress, error) {
	ingress, err := e.Ports.ByIndex(pIn)
	if err != nil {
		return nil, err
	}

	f := new(ethernet.Frame)
	if err := f.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	if ethernet.IsMulticast(f.SourceMAC) {
		return nil, ErrBadSource
	}
	e.Learned.Learn(f.SourceMAC, pIn)

	vIn, err := ingressVLAN(ingress, f)
	if err != nil {
		return nil, err
	}

	members := e.egressSet(ingress, vIn)

	targets, err := e.selectTargets(f.DestinationMAC, members)
	if err != nil {
		return nil, err
	}

	out := make([]Egress, 0, len(targets))
	for _, q := range targets {
		out = append(out, Egress{
			Port:  q.Index,
			Frame: transform(f, vIn, q),
		})
	}
	return out, nil
}

// ingressVLAN determines the VLAN a frame belongs to, and validates
// that the ingress port is actually a member of it (spec.md §4.4 step
// 4).
func ingressVLAN(ingress *port.Port, f *ethernet.Frame) (int, error) {
	if f.VLAN != nil {
		vIn := int(f.VLAN.ID)
		if !ingress.HasTaggedVLAN(vIn) {
			return 0, fmt.Errorf("%w: port %d not tagged member of VLAN %d", ErrVlanMismatch, ingress.Index, vIn)
		}
		return vIn, nil
	}

	if ingress.UntaggedVLAN == ethernet.NoVLAN {
		return 0, fmt.Errorf("%w: port %d has no untagged membership", ErrVlanMismatch, ingress.Index)
	}
	return ingress.UntaggedVLAN, nil
}

// egressSet returns every port other than the ingress port that
// participates in vIn, tagged or untagged.
func (e *Engine) egressSet(ingress *port.Port, vIn int) []*port.Port {
	all := e.Ports.All()
	members := make([]*port.Port, 0, len(all))
	for _, p := range all {
		if p.Index == ingress.Index {
			continue
		}
		if p.MemberOf(vIn) {
			members = append(members, p)
		}
	}
	return members
}

// selectTargets implements spec.md §4.4 step 6: destination-directed
// delivery for a known unicast destination, flooding for everything
// else, and an outright drop (not a flood fallback) for a unicast
// destination learned outside the ingress VLAN's egress set.
func (e *Engine) selectTargets(dst []byte, members []*port.Port) ([]*port.Port, error) {
	if !ethernet.IsUnicast(dst) {
		return members, nil
	}

	learnedPort, ok := e.Learned.Lookup(dst)
	if !ok {
		// Unknown unicast destination: flood within the VLAN.
		return members, nil
	}

	for _, p := range members {
		if p.Index == learnedPort {
			return []*port.Port{p}, nil
		}
	}
	return nil, fmt.Errorf("%w: destination learned on port %d", ErrCrossVlanLearned, learnedPort)
}

// transform applies spec.md §4.4 step 7 to produce the frame that must
// be emitted on egress port q, given the ingress frame f and the VLAN
// vIn it was classified into. The payload, source, and destination MAC
// are always byte-identical to the ingress frame; only the tag changes.
func transform(f *ethernet.Frame, vIn int, q *port.Port) *ethernet.Frame {
	out := &ethernet.Frame{
		DestinationMAC: f.DestinationMAC,
		SourceMAC:      f.SourceMAC,
		EtherType:      f.EtherType,
		Payload:        f.Payload,
	}

	switch {
	case q.HasTaggedVLAN(vIn) && f.VLAN != nil:
		// Tagged egress, tagged ingress: forward verbatim, including the
		// original PCP/DEI bits.
		out.VLAN = f.VLAN

	case q.HasTaggedVLAN(vIn) && f.VLAN == nil:
		// Tagged egress, untagged ingress: insert an 802.1Q shim with
		// PCP=0, DEI=0 (spec.md §9 note 4).
		out.VLAN = &ethernet.VLAN{ID: uint16(vIn)}

	default:
		// Untagged egress, either ingress: strip any tag. If ingress was
		// already untagged this is a no-op.
		out.VLAN = nil
	}

	return out
}
