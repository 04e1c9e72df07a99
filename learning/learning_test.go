package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mac(b byte) []byte {
	return []byte{0, 1, 2, 3, 4, b}
}

func TestLearnAndLookup(t *testing.T) {
	tbl := NewTableSize(4)

	_, ok := tbl.Lookup(mac(1))
	assert.False(t, ok)

	tbl.Learn(mac(1), 3)
	port, ok := tbl.Lookup(mac(1))
	assert.True(t, ok)
	assert.Equal(t, 3, port)
	assert.Equal(t, 1, tbl.Len())
}

func TestLearnMoveOnChange(t *testing.T) {
	tbl := NewTableSize(4)

	tbl.Learn(mac(1), 1)
	tbl.Learn(mac(2), 2)
	assert.Equal(t, 2, tbl.Len())

	// Re-learning the same (mac, port) must not consume a new slot.
	tbl.Learn(mac(1), 1)
	assert.Equal(t, 2, tbl.Len())

	// Learning the same mac on a different port updates in place.
	tbl.Learn(mac(1), 99)
	port, ok := tbl.Lookup(mac(1))
	assert.True(t, ok)
	assert.Equal(t, 99, port)
	assert.Equal(t, 2, tbl.Len())

	// The other entry is untouched.
	port, ok = tbl.Lookup(mac(2))
	assert.True(t, ok)
	assert.Equal(t, 2, port)
}

func TestLearnFIFOEviction(t *testing.T) {
	tbl := NewTableSize(2)

	tbl.Learn(mac(1), 1)
	tbl.Learn(mac(2), 2)
	assert.Equal(t, 2, tbl.Len())

	// Capacity is full; the next new MAC overwrites the oldest slot
	// (mac(1), written first) rather than growing the table.
	tbl.Learn(mac(3), 3)
	assert.Equal(t, 2, tbl.Len())

	_, ok := tbl.Lookup(mac(1))
	assert.False(t, ok, "oldest entry should have been evicted by the FIFO cursor")

	port, ok := tbl.Lookup(mac(2))
	assert.True(t, ok)
	assert.Equal(t, 2, port)

	port, ok = tbl.Lookup(mac(3))
	assert.True(t, ok)
	assert.Equal(t, 3, port)
}

func TestLearnIgnoresMulticastSource(t *testing.T) {
	tbl := NewTableSize(4)

	broadcast := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	tbl.Learn(broadcast, 1)

	assert.Equal(t, 0, tbl.Len())
	_, ok := tbl.Lookup(broadcast)
	assert.False(t, ok)
}

func TestLookupNeverMatchesMulticastDestination(t *testing.T) {
	tbl := NewTableSize(4)

	// Even if a multicast-looking key were somehow present, Lookup must
	// refuse to scan for one.
	tbl.entries[0] = entry{mac: string([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}), port: 7, filled: true}

	_, ok := tbl.Lookup([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	assert.False(t, ok)
}

func TestDefaultCapacity(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, DefaultCapacity, tbl.Cap())
}
