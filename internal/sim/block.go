// internal/sim/block.go
//
// Holding register datastore shared by the tick loop and the Modbus
// server. The lock covers exactly one register access: a reader
// assembling a multi-register response interleaves with a concurrent
// tick, so one response can mix registers from two ticks. That is the
// consistency a register-at-a-time field bus actually provides, and
// consumers must not assume more.
package sim

import (
	"sync"

	"github.com/juju/errors"
)

// ErrOutOfRange reports a register access outside of the block.
var ErrOutOfRange = errors.New("sim: register address out of range")

// Block is a fixed-size bank of holding registers.
type Block struct {
	mu   sync.Mutex
	regs []uint16
}

// NewBlock creates a zeroed block of n registers.
func NewBlock(n int) *Block {
	return &Block{regs: make([]uint16, n)}
}

// Seed overwrites the head of the block with the given values.
func (b *Block) Seed(values []uint16) error {
	if len(values) > len(b.regs) {
		return errors.Annotatef(ErrOutOfRange, "seeding %d values into %d registers", len(values), len(b.regs))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(b.regs, values)
	return nil
}

// Len returns the register count.
func (b *Block) Len() int { return len(b.regs) }

// Covers reports whether [addr, addr+count) fits inside the block.
func (b *Block) Covers(addr, count uint16) bool {
	return int(addr)+int(count) <= len(b.regs)
}

// Get reads one register.
func (b *Block) Get(addr uint16) (uint16, error) {
	if int(addr) >= len(b.regs) {
		return 0, errors.Annotatef(ErrOutOfRange, "read %d", addr)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[addr], nil
}

// Set writes one register.
func (b *Block) Set(addr, v uint16) error {
	if int(addr) >= len(b.regs) {
		return errors.Annotatef(ErrOutOfRange, "write %d", addr)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs[addr] = v
	return nil
}

// ReadRegs copies count registers starting at addr. The lock is taken
// per register, not per call: see the package comment for why.
func (b *Block) ReadRegs(addr, count uint16) ([]uint16, error) {
	if !b.Covers(addr, count) {
		return nil, errors.Annotatef(ErrOutOfRange, "read %d+%d", addr, count)
	}
	out := make([]uint16, count)
	for i := range out {
		v, err := b.Get(addr + uint16(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
