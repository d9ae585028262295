// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"sync"
)

// The leaked registry holds every buffer an Arena has abandoned. It is
// append-only and lives until process exit; keeping the buffers
// reachable here is what stops the garbage collector from reclaiming
// them once their arena is gone.
var (
	leakedMu    sync.Mutex
	leakedBufs  [][]byte
	leakedTotal int
)

func leak(buf []byte) {
	leakedMu.Lock()
	defer leakedMu.Unlock()
	leakedBufs = append(leakedBufs, buf)
	leakedTotal += len(buf)
}

// LeakedBytes returns the total number of bytes handed to the leaked
// registry by all arenas over the life of the process.
func LeakedBytes() int {
	leakedMu.Lock()
	defer leakedMu.Unlock()
	return leakedTotal
}
