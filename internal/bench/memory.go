package bench

import "runtime"

// Allocation is heap allocation observed over an interval.
type Allocation struct {
	Bytes   uint64 `json:"bytes"`
	Objects uint64 `json:"objects"`
}

type allocSnapshot struct {
	totalAlloc uint64
	mallocs    uint64
}

func readAllocs() allocSnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return allocSnapshot{totalAlloc: ms.TotalAlloc, mallocs: ms.Mallocs}
}

// since returns the allocation delta from s to now.
func (s allocSnapshot) since() Allocation {
	now := readAllocs()
	return Allocation{
		Bytes:   now.totalAlloc - s.totalAlloc,
		Objects: now.mallocs - s.mallocs,
	}
}
