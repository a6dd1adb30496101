// Package arena provides a scan-scoped memory arena.
//
// An Arena is owned by exactly one scan state and is the single release
// point for transient allocations made while fetching or rechecking
// tuples. It allocates memory in chunks and releases everything in one
// operation via Free.
//
// Arenas are not safe for concurrent use. A scan is driven by a single
// execution goroutine, so no locking is needed.
package arena

import (
	"fmt"
	"unsafe"
)

const (
	// DefaultChunkSize is the default size of a chunk (64 KiB).
	DefaultChunkSize = 64 * 1024
	// alignment is the memory alignment applied to every allocation.
	alignment = 8
)

// Stats tracks arena memory usage.
type Stats struct {
	ChunksAllocated uint64 // total chunks ever created
	BytesReserved   uint64 // current reserved memory
	BytesUsed       uint64 // actual bytes requested by allocations
	ActiveChunks    uint64 // current chunk count
	TotalAllocs     uint64 // cumulative allocation count
}

// Arena is a chunked bump allocator whose lifetime matches one scan.
type Arena struct {
	chunkSize int
	chunks    [][]byte
	offset    int // allocation offset within the last chunk
	stats     Stats
	freed     bool
}

// New creates a new Arena with the given chunk size.
// A chunkSize <= 0 selects DefaultChunkSize.
func New(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Arena{chunkSize: chunkSize}
}

// AllocBytes allocates a byte slice of the given size.
func (a *Arena) AllocBytes(size int) ([]byte, error) {
	if a.freed {
		return nil, fmt.Errorf("arena: allocation after free")
	}
	if size <= 0 {
		return nil, nil
	}

	aligned := (size + alignment - 1) &^ (alignment - 1)
	if aligned > a.chunkSize {
		// Oversized allocations get a dedicated chunk.
		chunk := make([]byte, aligned)
		a.chunks = append(a.chunks, chunk)
		a.offset = aligned
		a.noteAlloc(aligned, size)
		return chunk[:size:size], nil
	}

	if len(a.chunks) == 0 || a.offset+aligned > a.chunkSize {
		a.chunks = append(a.chunks, make([]byte, a.chunkSize))
		a.offset = 0
		a.stats.ChunksAllocated++
		a.stats.ActiveChunks++
		a.stats.BytesReserved += uint64(a.chunkSize)
	}

	chunk := a.chunks[len(a.chunks)-1]
	start := a.offset
	a.offset += aligned
	a.stats.BytesUsed += uint64(size)
	a.stats.TotalAllocs++
	return chunk[start : start+size : start+size], nil
}

func (a *Arena) noteAlloc(reserved, used int) {
	a.stats.ChunksAllocated++
	a.stats.ActiveChunks++
	a.stats.BytesReserved += uint64(reserved)
	a.stats.BytesUsed += uint64(used)
	a.stats.TotalAllocs++
}

// AllocUint32Slice allocates a uint32 slice of the given capacity with length 0.
func (a *Arena) AllocUint32Slice(capacity int) ([]uint32, error) {
	if capacity <= 0 {
		return nil, nil
	}

	size := capacity * int(unsafe.Sizeof(uint32(0)))
	bytes, err := a.AllocBytes(size)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*uint32)(unsafe.Pointer(&bytes[0])), capacity)[:0:capacity], nil //nolint:gosec // unsafe is required for arena implementation
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Freed reports whether Free has been called.
func (a *Arena) Freed() bool {
	return a.freed
}

// Free releases all arena memory in one operation.
//
// All slices allocated from this arena become invalid after Free.
// Free is idempotent; the arena cannot be reused afterwards.
func (a *Arena) Free() {
	if a.freed {
		return
	}
	a.freed = true
	a.chunks = nil
	a.offset = 0
	a.stats.ActiveChunks = 0
	a.stats.BytesReserved = 0
	a.stats.BytesUsed = 0
}

// Reset clears all allocations, keeping only the first chunk for reuse.
func (a *Arena) Reset() {
	if a.freed || len(a.chunks) == 0 {
		return
	}
	a.chunks = a.chunks[:1]
	a.offset = 0
	a.stats.ActiveChunks = 1
	a.stats.BytesReserved = uint64(cap(a.chunks[0]))
	a.stats.BytesUsed = 0
}
