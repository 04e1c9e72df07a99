// Package port holds the per-port identity and VLAN membership model for
// the switch: a fixed-size table of ports, each with at most one
// untagged VLAN membership and an ordered set of tagged VLAN
// memberships.
package port

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrAlreadySet is returned by Table.SetMAC when a port's MAC has
// already been assigned.
var ErrAlreadySet = errors.New("port: MAC already set")

// ErrUnknownPort is returned when an index or name does not resolve to a
// configured port.
var ErrUnknownPort = errors.New("port: unknown port")

// MaxTaggedVLANs is the largest number of tagged VLAN memberships a
// single port may hold.
const MaxTaggedVLANs = 4092

// A Port holds the identity and VLAN membership of a single switch
// port.
type Port struct {
	// Index is the port's 1-based index, matching the driver's channel
	// numbering. Index 0 is reserved for the control channel and never
	// assigned to a Port.
	Index int

	// Name is a human-readable label used only for diagnostics.
	Name string

	// MAC is the port's hardware address, discovered from the driver's
	// initial control message. It is filled exactly once, before any
	// frame is processed, and never changes thereafter.
	MAC net.HardwareAddr

	// UntaggedVLAN is the VLAN this port is an untagged member of, or
	// ethernet.NoVLAN if it has no untagged membership.
	UntaggedVLAN int

	// TaggedVLANs is the ordered, duplicate-free set of VLANs this port
	// is a tagged member of.
	TaggedVLANs []int
}

// HasTaggedVLAN reports whether the port is a tagged member of vid.
func (p *Port) HasTaggedVLAN(vid int) bool {
	for _, v := range p.TaggedVLANs {
		if v == vid {
			return true
		}
	}
	return false
}

// MemberOf reports whether the port participates, tagged or untagged,
// in vid.
func (p *Port) MemberOf(vid int) bool {
	return p.UntaggedVLAN == vid || p.HasTaggedVLAN(vid)
}

// A Table is the fixed-size collection of ports configured at startup.
// Index 1..N are valid; the table never grows or shrinks after
// construction.
type Table struct {
	ports []*Port // ports[i] holds the port with Index i+1
}

// NewTable constructs a Table from port specifications produced by
// ParsePortSpecs, in order. The resulting port indices are 1..len(specs).
func NewTable(specs []*Spec) *Table {
	t := &Table{ports: make([]*Port, len(specs))}
	for i, s := range specs {
		t.ports[i] = &Port{
			Index:        i + 1,
			Name:         s.Name,
			UntaggedVLAN: s.UntaggedVLAN,
			TaggedVLANs:  s.TaggedVLANs,
		}
	}
	return t
}

// Len returns the number of configured ports (N).
func (t *Table) Len() int {
	return len(t.ports)
}

// ByIndex returns the port at the given 1-based index.
func (t *Table) ByIndex(index int) (*Port, error) {
	if index < 1 || index > len(t.ports) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownPort, index)
	}
	return t.ports[index-1], nil
}

// ByName performs a case-insensitive linear scan for a port with the
// given name. It exists only to serve diagnostics/CLI tooling; the
// forwarding engine never looks up ports by name.
func (t *Table) ByName(name string) (*Port, error) {
	for _, p := range t.ports {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: name %q", ErrUnknownPort, name)
}

// All returns every configured port in index order. The returned slice
// must not be mutated by callers.
func (t *Table) All() []*Port {
	return t.ports
}

// SetMAC assigns the MAC address for the port at index. It must be
// called exactly once per port, before any frame is processed.
func (t *Table) SetMAC(index int, mac net.HardwareAddr) error {
	p, err := t.ByIndex(index)
	if err != nil {
		return err
	}
	if p.MAC != nil {
		return fmt.Errorf("%w: port %d", ErrAlreadySet, index)
	}
	p.MAC = mac
	return nil
}
