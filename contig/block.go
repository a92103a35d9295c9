package contig

import (
	"errors"
	"fmt"

	"github.com/joshuapare/contigmem/internal/rawmem"
)

// Block is a pinned memory block handed out by Allocate. It stays pinned and
// at a fixed address until passed to Allocator.Release.
type Block struct {
	data     []byte
	strategy Strategy
	pinner   Pinner
	report   Report
	released bool
}

// Bytes returns the block's memory. The slice must not be used after Release.
func (b *Block) Bytes() []byte { return b.data }

// Addr returns the block's virtual address.
func (b *Block) Addr() uintptr { return rawmem.Addr(b.data) }

// Size returns the block's size in bytes.
func (b *Block) Size() int { return len(b.data) }

// Report returns the search report of the Allocate call that produced the block.
func (b *Block) Report() Report { return b.report }

// Failover reports whether the block is an ordinary block handed out
// because no cache-compatible one was found.
func (b *Block) Failover() bool { return b.report.Failover }

// Released reports whether Release was called on the block.
func (b *Block) Released() bool { return b.released }

// Release unpins b and frees it with the strategy that allocated it. Both
// steps are attempted; any failure is returned wrapped in ErrRelease.
// Releasing a block twice returns ErrReleased.
func (a *Allocator) Release(b *Block) error {
	if b == nil || (b.data == nil && !b.released) {
		return fmt.Errorf("%w: nil block", ErrRelease)
	}
	if b.released {
		return ErrReleased
	}
	b.released = true

	uerr := b.pinner.Unlock(b.data)
	ferr := b.strategy.Free(b.data)
	b.data = nil

	if err := errors.Join(uerr, ferr); err != nil {
		a.log.Warn("block release failed", "err", err)
		return fmt.Errorf("%w: %w", ErrRelease, err)
	}
	return nil
}
