package ports

// CycleMetrics records orchestrator outcomes for the ops surface.
type CycleMetrics interface {
	RecordCycle(degraded bool)
	RecordCognitionCall()
	RecordGuardTrip()
	RecordCacheHit()
	RecordCacheMiss()
}
