// Package learning implements the switch's bounded MAC address learning
// table: a fixed-capacity, FIFO-replaced map from source MAC address to
// the port it was last observed on.
//
// The real hardware switches this design descends from use a hash table
// with per-entry aging timers. A tiny fixed-size FIFO array is enough to
// satisfy the learning table's observable contract — unique MACs,
// move-on-change updates in place, bounded occupancy — while keeping the
// invariants trivially auditable. Nothing prevents a future
// implementation from swapping this for a concurrent hash map with LRU
// eviction, so long as that contract holds.
package learning

import "github.com/vswitchd/vswitch/ethernet"

// DefaultCapacity is the number of slots in a Table constructed with
// NewTable.
const DefaultCapacity = 8

type entry struct {
	mac    string
	port   int
	filled bool
}

// A Table is a fixed-capacity, single-threaded MAC learning table. A
// Table must not be shared across goroutines without external
// synchronization.
type Table struct {
	entries []entry
	cursor  int
}

// NewTable constructs a Table with DefaultCapacity slots.
func NewTable() *Table {
	return NewTableSize(DefaultCapacity)
}

// NewTableSize constructs a Table with the given number of slots.
func NewTableSize(capacity int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	return &Table{entries: make([]entry, capacity)}
}

// Learn records that mac was last observed arriving on port.
//
// If mac is already present, its port is updated in place: no new slot
// is consumed and the entry's position does not change. Otherwise mac is
// written into the slot at the write cursor, overwriting whatever was
// there, and the cursor advances modulo the table's capacity.
//
// Learn is a no-op if mac is a multicast/broadcast address; callers are
// expected to perform the source-sanity check (spec.md §4.4 step 3)
// before calling Learn, exactly as the forwarding engine does, but Learn
// itself never stores one.
func (t *Table) Learn(mac []byte, port int) {
	if ethernet.IsMulticast(mac) {
		return
	}
	key := string(mac)

	for i := range t.entries {
		if t.entries[i].filled && t.entries[i].mac == key {
			t.entries[i].port = port
			return
		}
	}

	t.entries[t.cursor] = entry{mac: key, port: port, filled: true}
	t.cursor = (t.cursor + 1) % len(t.entries)
}

// Lookup returns the port mac was last learned on, and true, or (0,
// false) if mac has never been learned.
//
// Lookup always returns (0, false) for a multicast/broadcast MAC without
// scanning the table, since the table never stores one.
func (t *Table) Lookup(mac []byte) (int, bool) {
	if ethernet.IsMulticast(mac) {
		return 0, false
	}

	key := string(mac)
	for i := range t.entries {
		if t.entries[i].filled && t.entries[i].mac == key {
			return t.entries[i].port, true
		}
	}
	return 0, false
}

// Len returns the number of occupied slots.
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].filled {
			n++
		}
	}
	return n
}

// Cap returns the table's fixed capacity.
func (t *Table) Cap() int {
	return len(t.entries)
}
