package diagnose

import (
	"strings"
	"time"
)

// Error kinds reported by the single-endpoint model probe. Classification is
// by substring match on the raw error text, in declaration order.
const (
	ErrKindModelNotFound        = "model_not_found_or_not_allowed"
	ErrKindAuthFailed           = "auth_failed"
	ErrKindEndpointNotSupported = "endpoint_not_supported"
	ErrKindTimeout              = "timeout"
	ErrKindOther                = "other_error"
)

// ClassifyError buckets a raw probe error into the fixed taxonomy.
func ClassifyError(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "model"):
		return ErrKindModelNotFound
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return ErrKindAuthFailed
	case strings.Contains(msg, "404"):
		return ErrKindEndpointNotSupported
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return ErrKindTimeout
	}
	return ErrKindOther
}

const (
	DefaultProbeRetries = 3
	DefaultProbeWait    = 2 * time.Second
)

// ModelProbeResult is the record handed back to callers of TestModel. Error is
// empty on success, otherwise "<kind>: <raw message>".
type ModelProbeResult struct {
	Model    string `json:"model"`
	OK       bool   `json:"ok"`
	Endpoint string `json:"endpoint"`
	Error    string `json:"error"`
}

// TestModel checks whether one model answers on /responses, retrying with a
// fixed delay between attempts and stopping on first success. Unlike Run it
// probes a single endpoint: callers use it for a quick yes/no on a relay they
// already trust. The delay is a plain blocking sleep; callers needing
// cancellation run the whole call on a background task.
func (e *Engine) TestModel(target Target, retries int, wait time.Duration) ModelProbeResult {
	t := target.normalized()
	if retries <= 0 {
		retries = DefaultProbeRetries
	}
	if wait <= 0 {
		wait = DefaultProbeWait
	}

	candidate := Candidate{
		Label:    EndpointResponses,
		Endpoint: EndpointResponses,
		URL:      t.BaseURL + EndpointResponses,
	}
	lastErr := ""
	for attempt := 1; attempt <= retries; attempt++ {
		ok, msg := e.requestCandidate(t, candidate)
		if ok {
			return ModelProbeResult{Model: t.Model, OK: true, Endpoint: "responses"}
		}
		lastErr = msg
		if attempt < retries {
			e.sleep(wait)
		}
	}
	return ModelProbeResult{
		Model:    t.Model,
		OK:       false,
		Endpoint: "responses",
		Error:    ClassifyError(lastErr) + ": " + lastErr,
	}
}
