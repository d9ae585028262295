// SPDX-License-Identifier: Apache-2.0

// Package arena implements a chunked bump allocator that never frees.
//
// Memory is handed out by advancing an offset within fixed-capacity
// chunks. Individual allocations are never reclaimed, and tearing an
// arena down with Leak abandons every chunk on purpose: pointers
// obtained from Allocate stay valid for the remainder of the process's
// life, even after the Arena itself is gone.
package arena

import (
	"fmt"
	"runtime"
	"unsafe"
)

// DefaultChunkCapacity is the reserved capacity of each chunk (1 MiB).
const DefaultChunkCapacity = 1 << 20

// chunk is a single fixed-capacity buffer. buf is allocated once at
// full capacity and never resized, so addresses carved from it remain
// stable. used only grows.
type chunk struct {
	buf  []byte
	used int
}

// allocate carves size bytes off the tail of the chunk. The caller has
// already checked that the region fits.
func (c *chunk) allocate(size int) unsafe.Pointer {
	newUsed := c.used + size
	if newUsed > len(c.buf) {
		// Unreachable given the capacity check in Arena.Allocate;
		// catches bookkeeping regressions.
		panic("arena: chunk used length exceeds reserved capacity")
	}
	p := unsafe.Add(unsafe.Pointer(unsafe.SliceData(c.buf)), c.used)
	c.used = newUsed
	return p
}

// Arena is a bump allocator over a sequence of fixed-capacity chunks.
// Only the most recent chunk accepts new allocations; earlier chunks
// keep whatever unused tail they were left with. Not goroutine-safe:
// the arena is meant to be owned and mutated by one caller at a time.
type Arena struct {
	chunks   []chunk
	cleanups []runtime.Cleanup
	chunkCap int
	leaked   bool
}

// Option configures an Arena at construction time.
type Option func(*Arena)

// WithChunkCapacity overrides the reserved capacity of each chunk.
// Non-positive values fall back to DefaultChunkCapacity.
func WithChunkCapacity(n int) Option {
	return func(a *Arena) {
		a.chunkCap = n
	}
}

// New constructs an empty arena with no chunks.
func New(opts ...Option) *Arena {
	a := &Arena{chunkCap: DefaultChunkCapacity}
	for _, opt := range opts {
		opt(a)
	}
	if a.chunkCap <= 0 {
		a.chunkCap = DefaultChunkCapacity
	}
	return a
}

// Allocate returns the address of a writable byte region of length
// size, carved from the tail of the last chunk, or from a fresh chunk
// when the last one has no room. Successive allocations from the same
// chunk are back-to-back with zero padding; no alignment is provided.
// Callers that need alignment must round size up themselves.
//
// Allocate panics when size is negative, when size is not strictly
// smaller than the chunk capacity, or when the arena has been leaked.
// The returned address stays valid for the rest of the process's life,
// including after Leak.
func (a *Arena) Allocate(size int) unsafe.Pointer {
	if a.leaked {
		panic("arena: Allocate after Leak")
	}
	if size < 0 {
		panic(fmt.Sprintf("arena: negative allocation size %d", size))
	}
	if size >= a.chunkCap {
		panic(fmt.Sprintf("arena: allocation of %d bytes does not fit in a %d byte chunk", size, a.chunkCap))
	}
	if n := len(a.chunks); n > 0 {
		last := &a.chunks[n-1]
		if last.used+size <= len(last.buf) {
			return last.allocate(size)
		}
	}
	a.grow()
	return a.chunks[len(a.chunks)-1].allocate(size)
}

// AllocateBytes returns the allocated region as a byte slice with
// length and capacity size. The slice is zero-filled and, like every
// allocation, stays valid after Leak.
func (a *Arena) AllocateBytes(size int) []byte {
	return unsafe.Slice((*byte)(a.Allocate(size)), size)
}

// grow appends a fresh chunk at full reserved capacity. The buffer is
// never resized afterwards, so its base address is stable.
func (a *Arena) grow() {
	buf := make([]byte, a.chunkCap)
	a.chunks = append(a.chunks, chunk{buf: buf})
	// If the owner drops the arena without calling Leak, the chunk is
	// parked in the leaked registry untrimmed instead of being
	// collected out from under previously issued pointers.
	a.cleanups = append(a.cleanups, runtime.AddCleanup(a, leak, buf))
}

// Leak tears the arena down. Every chunk is trimmed to its used length
// and handed to the process-wide leaked registry, which is never
// cleared, so all addresses previously returned by Allocate remain
// valid until process exit. This is one-way: the arena accepts no
// further allocations, and the leaked bytes cannot be recovered.
func (a *Arena) Leak() {
	if a.leaked {
		panic("arena: Leak called twice")
	}
	for i := range a.chunks {
		a.cleanups[i].Stop()
		c := &a.chunks[i]
		// Reslicing keeps the base address stable; capacity beyond the
		// used length is unreachable from the registry entry.
		leak(c.buf[:c.used:c.used])
	}
	a.chunks = nil
	a.cleanups = nil
	a.leaked = true
}

// Len returns the total number of bytes allocated across all chunks.
func (a *Arena) Len() int {
	var total int
	for i := range a.chunks {
		total += a.chunks[i].used
	}
	return total
}

// Cap returns the total reserved capacity across all chunks.
func (a *Arena) Cap() int {
	var total int
	for i := range a.chunks {
		total += len(a.chunks[i].buf)
	}
	return total
}

// NumChunks returns the number of chunks the arena has created.
func (a *Arena) NumChunks() int {
	return len(a.chunks)
}
