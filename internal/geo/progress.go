package geo

// Step tags the lifecycle phase a progress event belongs to. The values are
// part of the streaming wire contract consumed by the SSE layer.
type Step string

const (
	StepInit          Step = "init"
	StepModelStart    Step = "model_start"
	StepQueryStart    Step = "query_start"
	StepAnalysisStart Step = "analysis_start"
	StepBrandFound    Step = "brand_found"
	StepBrandNotFound Step = "brand_not_found"
	StepModelComplete Step = "model_complete"
	StepCalculating   Step = "calculating"
	StepComplete      Step = "complete"

	StepLLMRequest      Step = "llm_request"
	StepLLMResponse     Step = "llm_response"
	StepLLMRetry        Step = "llm_retry"
	StepLLMRetryWarning Step = "llm_retry_warning"
	StepLLMError        Step = "llm_error"

	StepExtractionStart    Step = "brand_analysis_start"
	StepExtractionComplete Step = "brand_analysis_complete"
	StepExtractionFallback Step = "brand_analysis_fallback"
)

// Event is one progress notification. Progress is a percentage in [0,100] or
// nil when the event carries no overall progress (LLM request chatter).
type Event struct {
	Message  string                 `json:"status"`
	Step     Step                   `json:"step,omitempty"`
	Progress *float64               `json:"progress,omitempty"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// Listener receives progress events synchronously, in call order. Listeners
// are treated as fire-and-forget instrumentation: a panicking listener is
// recovered and ignored so it can never abort a half-finished run.
type Listener func(Event)

// emitter wraps an optional listener so call sites stay unconditional.
type emitter struct {
	listener Listener
}

func (e emitter) emit(message string, step Step, progress *float64, fields map[string]interface{}) {
	if e.listener == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	e.listener(Event{
		Message:  message,
		Step:     step,
		Progress: progress,
		Fields:   fields,
	})
}

func pct(v float64) *float64 {
	return &v
}
