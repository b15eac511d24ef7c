// Package mem implements the simulator's memory subsystem: a plain sparse
// word memory, a reversible variant that adds region classification and
// the self-inverse exchange primitive, and a controller that routes
// requests onto hot (irreversible) and cold (reversible) paths while
// tracking the silicon-sizing numbers described in spec.md §4.2-§4.3.
package mem

import (
	"fmt"

	"github.com/btcsuite/goleveldb/leveldb/errors"
)

// ErrInvalidRegion is returned by ConfigureRegion when start >= end.
var ErrInvalidRegion = errors.New("mem: invalid region bounds")

const wordMask = 0xFFFFFFFF

// Memory is a sparse mapping from 32-bit word address to 32-bit value.
// Unmapped addresses read as zero; stores mask to 32 bits.
type Memory struct {
	data map[uint32]uint32
}

// NewMemory returns an empty memory.
func NewMemory() *Memory {
	return &Memory{data: make(map[uint32]uint32)}
}

// LoadWord returns the value stored at addr, or 0 if unmapped.
func (m *Memory) LoadWord(addr uint32) uint32 {
	return m.data[addr]
}

// StoreWord writes value (masked to 32 bits) at addr.
func (m *Memory) StoreWord(addr uint32, value uint32) {
	m.data[addr] = value & wordMask
}

// RegionType classifies an address range of reversible memory.
type RegionType int

const (
	// Standard marks a range as ordinary, irreversible memory.
	Standard RegionType = iota
	// Reversible marks a range as exchange-only memory.
	Reversible
	// Mixed marks a range that supports both access styles; the choice
	// of which to use at runtime is left to the caller.
	Mixed
)

func (t RegionType) String() string {
	switch t {
	case Standard:
		return "STANDARD"
	case Reversible:
		return "REVERSIBLE"
	case Mixed:
		return "MIXED"
	default:
		return "UNKNOWN"
	}
}

type region struct {
	start, end uint32
	typ        RegionType
}

// exchangeEntry records one exchange for analysis; it is not required
// for algebraic reversal.
type exchangeEntry struct {
	addr           uint32
	oldMem, oldReg uint32
}

// ReversibleMemory extends Memory with region classification, an exchange
// log, and access counters for silicon analysis. Regions are matched
// first-match-wins against the order they were configured; an address
// matching no region falls back to DefaultType.
type ReversibleMemory struct {
	data    map[uint32]uint32
	regions []region

	// DefaultType is the region classification for addresses matching no
	// configured region.
	DefaultType RegionType

	exchangeLog []exchangeEntry

	reversibleAccesses int
	standardAccesses   int
}

// NewReversibleMemory returns an empty reversible memory with every
// address defaulting to Standard.
func NewReversibleMemory() *ReversibleMemory {
	return &ReversibleMemory{
		data:        make(map[uint32]uint32),
		DefaultType: Standard,
	}
}

// ConfigureRegion appends a half-open [start, end) range tagged typ to
// the region table. Later calls for overlapping ranges do not replace
// earlier ones: lookup is first-match-wins, so the first configured
// region covering an address always governs it.
func (m *ReversibleMemory) ConfigureRegion(start, end uint32, typ RegionType) error {
	if start >= end {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRegion, start, end)
	}
	m.regions = append(m.regions, region{start: start, end: end, typ: typ})
	return nil
}

// GetRegionType returns the region type governing addr: the first
// configured range containing it, or DefaultType if none match.
func (m *ReversibleMemory) GetRegionType(addr uint32) RegionType {
	for _, r := range m.regions {
		if r.start <= addr && addr < r.end {
			return r.typ
		}
	}
	return m.DefaultType
}

// LoadWord performs a standard (irreversible) load.
func (m *ReversibleMemory) LoadWord(addr uint32) uint32 {
	m.standardAccesses++
	return m.data[addr]
}

// StoreWord performs a standard (irreversible) store.
func (m *ReversibleMemory) StoreWord(addr uint32, value uint32) {
	m.standardAccesses++
	m.data[addr] = value & wordMask
}

// Exchange swaps regValue with mem[addr] and returns the prior memory
// value. It is the sole reversible memory primitive: calling
// Exchange(addr, Exchange(addr, v)) restores both operands to their
// pre-state, since each call is its own inverse given the correct second
// operand.
func (m *ReversibleMemory) Exchange(addr uint32, regValue uint32) uint32 {
	m.reversibleAccesses++

	oldMem := m.data[addr]
	m.data[addr] = regValue & wordMask
	m.exchangeLog = append(m.exchangeLog, exchangeEntry{addr: addr, oldMem: oldMem, oldReg: regValue})

	return oldMem
}

// MemorySummary reports reversible-memory statistics for silicon
// analysis.
type MemorySummary struct {
	TotalWords          int
	ReversibleAccesses  int
	StandardAccesses    int
	ReversibilityRatio  float64
	ConfiguredRegions   int
	ExchangeLogDepth    int
}

// Summary returns the current memory-subsystem statistics.
func (m *ReversibleMemory) Summary() MemorySummary {
	total := m.reversibleAccesses + m.standardAccesses
	var ratio float64
	if total > 0 {
		ratio = float64(m.reversibleAccesses) / float64(total)
	}
	return MemorySummary{
		TotalWords:         len(m.data),
		ReversibleAccesses: m.reversibleAccesses,
		StandardAccesses:   m.standardAccesses,
		ReversibilityRatio: ratio,
		ConfiguredRegions:  len(m.regions),
		ExchangeLogDepth:   len(m.exchangeLog),
	}
}
