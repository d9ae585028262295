// SPDX-License-Identifier: Apache-2.0

package arena

// ArenaAllocated marks types that are eligible to be constructed in
// memory obtained from an Arena. It is a pure compile-time tag: it
// carries no behavior, and the allocator itself never consults it.
// Code that builds typed objects on top of raw arena memory can
// require it to gate which types are allowed in.
type ArenaAllocated interface {
	arenaAllocated()
}

// Allocated implements ArenaAllocated with zero size and zero
// behavior. Embed it to declare a type arena-eligible.
type Allocated struct{}

func (Allocated) arenaAllocated() {}

var _ ArenaAllocated = Allocated{}
