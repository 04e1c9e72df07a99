// Package ethernet implements marshaling and unmarshaling of IEEE 802.3
// Ethernet II frames carrying at most one IEEE 802.1Q VLAN tag.
//
// Double tagging (QinQ) is out of scope: a Frame carries zero or one VLAN
// tags, never two.
package ethernet

import (
	"encoding/binary"
	"errors"
	"net"
)

// ErrShortFrame is returned when a byte slice is too short to contain a
// valid Ethernet header, or claims to carry an 802.1Q tag (TPID 0x8100 at
// offset 12) but is too short to contain one.
var ErrShortFrame = errors.New("ethernet: frame too short")

var (
	// Broadcast is a special MAC address which indicates a Frame should be
	// sent to every device on a given VLAN.
	Broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// An EtherType is a value used to identify an upper layer protocol
// encapsulated in a Frame.
//
// A list of IANA-assigned EtherType values may be found here:
// http://www.iana.org/assignments/ieee-802-numbers/ieee-802-numbers.xhtml.
type EtherType uint16

// Common EtherType values frequently used in a Frame.
const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
	EtherTypeVLAN EtherType = 0x8100
	EtherTypeIPv6 EtherType = 0x86DD
)

// minFrameLen is the minimum byte length of an untagged Ethernet header.
const minFrameLen = 14

// minTaggedFrameLen is the minimum byte length of an Ethernet header that
// also carries one 802.1Q tag.
const minTaggedFrameLen = 18

// A Frame is an IEEE 802.3 Ethernet II frame. A Frame contains source and
// destination MAC addresses, an optional 802.1Q VLAN tag, an EtherType,
// and payload data.
type Frame struct {
	// DestinationMAC specifies the destination MAC address for this
	// Frame. If this address is set to Broadcast, the Frame is delivered
	// to every device on the VLAN.
	DestinationMAC net.HardwareAddr

	// SourceMAC specifies the source MAC address for this Frame.
	SourceMAC net.HardwareAddr

	// VLAN specifies the optional 802.1Q tag carried by this Frame. A nil
	// value means the Frame is untagged.
	VLAN *VLAN

	// EtherType is a value used to identify an upper layer protocol
	// encapsulated in this Frame. When VLAN is non-nil this is the inner
	// EtherType, found after the tag.
	EtherType EtherType

	// Payload is a variable length data payload encapsulated by this
	// Frame.
	Payload []byte
}

// IsUnicast reports whether addr is a unicast hardware address: the low
// bit of its first octet is clear.
func IsUnicast(addr net.HardwareAddr) bool {
	return len(addr) > 0 && addr[0]&0x01 == 0
}

// IsMulticast reports whether addr is a multicast or broadcast hardware
// address: the low bit of its first octet is set.
func IsMulticast(addr net.HardwareAddr) bool {
	return len(addr) > 0 && addr[0]&0x01 == 1
}

// MarshalBinary allocates a byte slice and marshals a Frame into binary
// form.
//
// MarshalBinary never returns an error.
func (f *Frame) MarshalBinary() ([]byte, error) {
	// 6 bytes: destination MAC
	// 6 bytes: source MAC
	// 4 bytes: optional 802.1Q tag (TPID + TCI)
	// 2 bytes: EtherType
	// N bytes: payload
	tagLen := 0
	if f.VLAN != nil {
		tagLen = 4
	}

	b := make([]byte, 6+6+tagLen+2+len(f.Payload))

	copy(b[0:6], f.DestinationMAC)
	copy(b[6:12], f.SourceMAC)

	n := 12
	if f.VLAN != nil {
		// VLAN.MarshalBinary never returns an error for an ID already
		// validated by the port table / parser.
		vb, _ := f.VLAN.MarshalBinary()

		binary.BigEndian.PutUint16(b[n:n+2], uint16(EtherTypeVLAN))
		copy(b[n+2:n+4], vb)
		n += 4
	}

	binary.BigEndian.PutUint16(b[n:n+2], uint16(f.EtherType))
	copy(b[n+2:], f.Payload)

	return b, nil
}

// UnmarshalBinary unmarshals a byte slice into a Frame.
//
// If fewer than 14 bytes are present, or the frame declares an 802.1Q tag
// but fewer than 18 bytes are present, ErrShortFrame is returned.
func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < minFrameLen {
		return ErrShortFrame
	}

	dst := make(net.HardwareAddr, 6)
	copy(dst, b[0:6])
	f.DestinationMAC = dst

	src := make(net.HardwareAddr, 6)
	copy(src, b[6:12])
	f.SourceMAC = src

	et := EtherType(binary.BigEndian.Uint16(b[12:14]))
	n := 14

	f.VLAN = nil
	if et == EtherTypeVLAN {
		if len(b) < minTaggedFrameLen {
			return ErrShortFrame
		}

		vlan := new(VLAN)
		if err := vlan.UnmarshalBinary(b[n : n+2]); err != nil {
			return err
		}
		f.VLAN = vlan

		et = EtherType(binary.BigEndian.Uint16(b[n+2 : n+4]))
		n += 4
	}
	f.EtherType = et

	payload := make([]byte, len(b[n:]))
	copy(payload, b[n:])
	f.Payload = payload

	return nil
}
