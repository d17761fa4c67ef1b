package diagnose

import (
	"fmt"
	"strings"
)

// OutcomeStatus is the tri-state result of one candidate probe. Skipped means
// "deliberately never attempted", not "attempted and inconclusive".
type OutcomeStatus int

const (
	OutcomeFailed OutcomeStatus = iota
	OutcomeOK
	OutcomeSkipped
)

// Outcome is the immutable record of one candidate probe. Body carries the
// response body on success, the error text on failure, and the skip reason
// otherwise.
type Outcome struct {
	Candidate Candidate     `json:"candidate"`
	Status    OutcomeStatus `json:"status"`
	Body      string        `json:"body,omitempty"`
}

func (o Outcome) OK() bool      { return o.Status == OutcomeOK }
func (o Outcome) Failed() bool  { return o.Status == OutcomeFailed }
func (o Outcome) Skipped() bool { return o.Status == OutcomeSkipped }

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeOK:
		return "ok"
	case OutcomeSkipped:
		return "skipped"
	}
	return "failed"
}

// MarshalJSON renders the status as its string form.
func (s OutcomeStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// LatencyStats carries the best-effort reachability measurements. A false ok
// flag renders as "unavailable"; none of these abort a diagnosis.
type LatencyStats struct {
	PingMs      float64 `json:"ping_ms"`
	PingOK      bool    `json:"ping_ok"`
	PingLossPct float64 `json:"ping_loss_pct"`
	HTTPMs      float64 `json:"http_ms"`
	HTTPOK      bool    `json:"http_ok"`
	PortMs      float64 `json:"port_ms"`
	PortOK      bool    `json:"port_ok"`
	PortChecked bool    `json:"port_checked"`
}

// Report is the aggregate result of one probing invocation. Built once,
// immutable afterward.
type Report struct {
	Target          Target       `json:"-"`
	Host            string       `json:"host"`
	Latency         LatencyStats `json:"latency"`
	Outcomes        []Outcome    `json:"outcomes"`
	Verdict         Verdict      `json:"verdict"`
	ModelInList     Support      `json:"model_in_list"`
	EchoedModel     string       `json:"echoed_model,omitempty"`
	EchoedSource    string       `json:"echoed_source,omitempty"`
	SuccessEndpoint string       `json:"success_endpoint,omitempty"`
	SucceededLabels []string     `json:"succeeded_labels,omitempty"`
	SucceededURLs   []string     `json:"succeeded_urls,omitempty"`
	Conclusion      string       `json:"conclusion"`
	Detail          string       `json:"detail"`
}

func (r *Report) collectSucceeded() {
	seen := make(map[string]bool)
	for _, o := range r.Outcomes {
		if !o.OK() {
			continue
		}
		r.SucceededLabels = append(r.SucceededLabels, o.Candidate.Label)
		if !seen[o.Candidate.URL] {
			seen[o.Candidate.URL] = true
			r.SucceededURLs = append(r.SucceededURLs, o.Candidate.URL)
		}
	}
}

func fmtMS(ms float64, ok bool) string {
	if !ok {
		return "unavailable"
	}
	return fmt.Sprintf("%.0fms", ms)
}

func (s LatencyStats) portText() string {
	switch {
	case !s.PortChecked:
		return "unavailable"
	case s.PortOK:
		return "OK"
	}
	return "FAIL"
}

func supportText(s Support) string {
	switch s {
	case SupportYes:
		return "available"
	case SupportNo:
		return "unavailable"
	}
	return "unknown"
}

// buildTranscript renders the multi-line detail text handed to callers for
// display and for the persistent diagnosis log.
func (r *Report) buildTranscript() string {
	lines := []string{
		"Base URL: " + r.Target.BaseURL,
		"Base Host: " + r.Host,
		fmt.Sprintf("Reachability: Ping=%s / HTTP=%s / Port=%s",
			fmtMS(r.Latency.PingMs, r.Latency.PingOK),
			fmtMS(r.Latency.HTTPMs, r.Latency.HTTPOK),
			r.Latency.portText()),
		"",
	}

	usable := "none"
	if len(r.SucceededLabels) > 0 {
		usable = strings.Join(r.SucceededLabels, ", ")
	}
	lines = append(lines, "Usable endpoints: "+usable)
	if len(r.SucceededURLs) > 0 {
		lines = append(lines, "Usable endpoints (URL):")
		for _, u := range r.SucceededURLs {
			lines = append(lines, "- "+u)
		}
	}

	lines = append(lines, fmt.Sprintf("Model listed (%s): %s", r.Target.Model, r.ModelInList))
	if r.EchoedModel != "" {
		source := r.EchoedSource
		if source == "" {
			source = "unknown"
		}
		lines = append(lines, fmt.Sprintf("Echoed model: %s (source: %s)", r.EchoedModel, source))
	}

	hint := ""
	if r.Verdict.Source != "" {
		hint = fmt.Sprintf(" (source: %s)", r.Verdict.Source)
	}
	lines = append(lines,
		fmt.Sprintf("Model availability (%s): %s%s", r.Target.Model, supportText(r.Verdict.Supported), hint),
		"Embedding test model: "+embeddingTestModel,
		"Moderation test model: "+moderationTestModel,
		"",
		"Endpoint probe results:")

	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomeOK:
			lines = append(lines, "- "+o.Candidate.Label+": OK")
		case OutcomeFailed:
			lines = append(lines, fmt.Sprintf("- %s: FAIL (%s)", o.Candidate.Label, briefError(o.Body)))
		default:
			lines = append(lines, "- "+o.Candidate.Label+": "+o.Body)
		}
	}

	result := "failure"
	if r.SuccessEndpoint != "" {
		result = "success"
	}
	lines = append(lines, "", "API request result: "+result)
	return strings.Join(lines, "\n")
}

// briefError keeps the first line of an error body, capped at 200 runes.
func briefError(body string) string {
	if body == "" {
		return "-"
	}
	line := body
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	runes := []rune(line)
	if len(runes) > 200 {
		return string(runes[:200])
	}
	return line
}
