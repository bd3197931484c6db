package telemetry

// Span and attribute names used for instrumentation.
const (
	// Spans
	SpanWPSExecute       = "wps.execute"
	SpanItineraryCompute = "itinerary.compute"
	SpanGraphBuild       = "graph.build"

	// Attributes
	AttrWPSService   = "wps.service"
	AttrWPSPlugin    = "wps.plugin"
	AttrBackendState = "routing.backend_state"
	AttrStepCount    = "routing.step_count"
	AttrItineraryID  = "routing.itinerary_id"
)
