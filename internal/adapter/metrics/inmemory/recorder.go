package inmemory

import "sync"

type Snapshot struct {
	CycleTotal     uint64 `json:"cycle_total"`
	CycleDegraded  uint64 `json:"cycle_degraded"`
	CognitionCalls uint64 `json:"cognition_calls"`
	GuardTrips     uint64 `json:"guard_trips"`
	CacheHits      uint64 `json:"cache_hits"`
	CacheMisses    uint64 `json:"cache_misses"`
}

type Recorder struct {
	mu        sync.Mutex
	cycles    uint64
	degraded  uint64
	cognition uint64
	trips     uint64
	hits      uint64
	misses    uint64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordCycle(degraded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles++
	if degraded {
		r.degraded++
	}
}

func (r *Recorder) RecordCognitionCall() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cognition++
}

func (r *Recorder) RecordGuardTrip() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips++
}

func (r *Recorder) RecordCacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *Recorder) RecordCacheMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		CycleTotal:     r.cycles,
		CycleDegraded:  r.degraded,
		CognitionCalls: r.cognition,
		GuardTrips:     r.trips,
		CacheHits:      r.hits,
		CacheMisses:    r.misses,
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
