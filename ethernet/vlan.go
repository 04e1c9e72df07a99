package ethernet

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	// NoVLAN is the distinguished sentinel VLAN ID meaning "none/absent".
	// It is distinct from VID 0, which is a valid, assignable VLAN
	// (DefaultVLAN).
	NoVLAN = -1

	// DefaultVLAN is the VLAN assumed for any port spec that names no
	// explicit membership.
	DefaultVLAN = 0

	// MaxVLAN is the largest VLAN ID a tag may carry when marshaled. Port
	// specs use the narrower bound port.MaxPortSpecVLAN.
	MaxVLAN = 4094
)

// ErrInvalidVLAN is returned when a VLAN ID outside of [0, MaxVLAN] is
// used in a tag.
var ErrInvalidVLAN = errors.New("ethernet: invalid VLAN ID")

// A VLAN is an IEEE 802.1Q Virtual LAN (VLAN) tag. A VLAN contains
// information regarding traffic priority and a VLAN identifier for a
// given Frame.
type VLAN struct {
	// Priority specifies an IEEE 802.1p priority level (PCP).
	Priority uint8

	// DropEligible indicates if a Frame is eligible to be dropped in the
	// presence of network congestion (DEI).
	DropEligible bool

	// ID specifies the VLAN ID for a Frame. MarshalBinary rejects an ID
	// above MaxVLAN; UnmarshalBinary stores whatever 12-bit value the
	// wire carries, including 4095.
	ID uint16
}

// MarshalBinary allocates a byte slice and marshals a VLAN into binary
// form.
//
// If the VLAN ID is greater than MaxVLAN, ErrInvalidVLAN is returned.
func (v *VLAN) MarshalBinary() ([]byte, error) {
	if v.ID > MaxVLAN {
		return nil, ErrInvalidVLAN
	}

	// 3 bits: priority
	ub := uint16(v.Priority) << 13

	// 1 bit: drop eligible
	var drop uint16
	if v.DropEligible {
		drop = 1
	}
	ub |= drop << 12

	// 12 bits: VLAN ID
	ub |= v.ID

	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, ub)

	return b, nil
}

// UnmarshalBinary unmarshals a byte slice into a VLAN.
//
// If the byte slice does not contain exactly 2 bytes of data,
// io.ErrUnexpectedEOF is returned. PCP and DEI bits are preserved
// bit-for-bit; they are never validated or reinterpreted.
func (v *VLAN) UnmarshalBinary(b []byte) error {
	if len(b) != 2 {
		return io.ErrUnexpectedEOF
	}

	// 3 bits: priority
	// 1 bit : drop eligible
	// 12 bits: VLAN ID
	ub := binary.BigEndian.Uint16(b[0:2])
	v.Priority = uint8(ub >> 13)
	v.DropEligible = ub&0x1000 != 0
	v.ID = ub & 0x0fff

	return nil
}
