package port

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vswitchd/vswitch/ethernet"
)

// ErrSpecParse is returned for any malformed PORTSPEC argument. It wraps
// a more specific reason; use errors.Is against ErrSpecParse to detect
// the class, or inspect the message for detail.
var ErrSpecParse = errors.New("port: invalid port spec")

// MaxPortSpecVLAN is the largest VID a PORTSPEC argument may name, per
// spec.md §6's grammar ("VID := decimal integer in 0..4092"). This is
// narrower than ethernet.MaxVLAN (4094): §3's wider range governs the
// VLAN-ID domain at the data-model/wire level, but §6 independently
// caps what the CLI surface will accept.
const MaxPortSpecVLAN = 4092

// A Spec is one parsed PORTSPEC argument, ready to seed a Port (minus
// MAC and Index, which are assigned by NewTable and the driver).
type Spec struct {
	Name         string
	UntaggedVLAN int
	TaggedVLANs  []int
}

// ParsePortSpecs parses a sequence of PORTSPEC arguments per the grammar:
//
//	PORTSPEC   := NAME                        # untagged member of DefaultVLAN
//	            | NAME '[' MEMBERSHIP ']'
//	MEMBERSHIP := 'T' ':' VIDLIST             # tagged member of these VLANs
//	            | 'U' ':' VID                 # untagged member of this VLAN
//	VIDLIST    := VID (',' VID)*
//	VID        := decimal integer in 0..MaxPortSpecVLAN
//	NAME       := non-empty string not containing '['
//
// Any malformed argument, a VID greater than MaxPortSpecVLAN, or more
// than MaxTaggedVLANs tagged VLANs on one port, returns an error
// wrapping ErrSpecParse.
func ParsePortSpecs(args []string) ([]*Spec, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no ports given", ErrSpecParse)
	}

	specs := make([]*Spec, 0, len(args))
	for _, arg := range args {
		s, err := parsePortSpec(arg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func parsePortSpec(arg string) (*Spec, error) {
	name := arg
	membership := ""
	bracketed := false

	if i := strings.IndexByte(arg, '['); i >= 0 {
		if !strings.HasSuffix(arg, "]") {
			return nil, fmt.Errorf("%w: %q: missing closing ']'", ErrSpecParse, arg)
		}
		name = arg[:i]
		membership = arg[i+1 : len(arg)-1]
		bracketed = true
	}

	if name == "" {
		return nil, fmt.Errorf("%w: %q: empty port name", ErrSpecParse, arg)
	}

	s := &Spec{
		Name:         name,
		UntaggedVLAN: ethernet.NoVLAN,
	}

	if !bracketed {
		s.UntaggedVLAN = ethernet.DefaultVLAN
		return s, nil
	}

	letter, rest, ok := strings.Cut(membership, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q: missing ':' in membership", ErrSpecParse, arg)
	}

	switch letter {
	case "T":
		vids, err := parseVIDList(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrSpecParse, arg, err)
		}
		if len(vids) > MaxTaggedVLANs {
			return nil, fmt.Errorf("%w: %q: more than %d tagged VLANs", ErrSpecParse, arg, MaxTaggedVLANs)
		}
		seen := make(map[int]bool, len(vids))
		for _, v := range vids {
			if seen[v] {
				return nil, fmt.Errorf("%w: %q: duplicate VLAN %d", ErrSpecParse, arg, v)
			}
			seen[v] = true
		}
		s.TaggedVLANs = vids

	case "U":
		vid, err := parseVID(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrSpecParse, arg, err)
		}
		s.UntaggedVLAN = vid

	default:
		return nil, fmt.Errorf("%w: %q: unknown membership letter %q", ErrSpecParse, arg, letter)
	}

	return s, nil
}

func parseVIDList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	vids := make([]int, 0, len(parts))
	for _, p := range parts {
		vid, err := parseVID(p)
		if err != nil {
			return nil, err
		}
		vids = append(vids, vid)
	}
	return vids, nil
}

func parseVID(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid VLAN ID %q", s)
	}
	if n < 0 || n > MaxPortSpecVLAN {
		return 0, fmt.Errorf("VLAN ID %d out of range [0, %d]", n, MaxPortSpecVLAN)
	}
	return n, nil
}
