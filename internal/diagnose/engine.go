package diagnose

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine runs probing passes. It is synchronous and sequential internally:
// relay services frequently rate-limit or misbehave under concurrent load from
// the same key, so candidates are probed strictly one at a time. Callers are
// responsible for running a pass off any interactive thread.
type Engine struct {
	client      *http.Client
	sleep       func(time.Duration)
	skipLatency bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient replaces the base HTTP client. The per-target timeout is
// still applied on top of it.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) { e.client = client }
}

// WithSleep replaces the inter-attempt delay of TestModel, so tests can run
// the retry loop without real time passing.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// WithoutLatencyProbe disables the ping/HEAD/TCP measurements.
func WithoutLatencyProbe() Option {
	return func(e *Engine) { e.skipLatency = true }
}

// New creates a probing engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		client: &http.Client{},
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs a full diagnosis pass against the target: latency measurements,
// the sequential candidate sweep, model-support inference, and conclusion
// synthesis. The only error it returns is an unusable base URL, raised before
// any network I/O; every per-candidate failure is recorded in the report.
func (e *Engine) Run(target Target) (*Report, error) {
	t := target.normalized()
	host, err := hostOf(t.BaseURL)
	if err != nil {
		return nil, err
	}

	var latency LatencyStats
	if !e.skipLatency {
		latency = measureLatency(t.BaseURL, host, t.APIKey)
	}

	candidates := BuildCandidates(t.BaseURL)
	outcomes := make([]Outcome, 0, len(candidates))
	successEndpoint := ""
	for _, c := range candidates {
		if reason, skip := skipReasons[c.Endpoint]; skip {
			outcomes = append(outcomes, Outcome{Candidate: c, Status: OutcomeSkipped, Body: "SKIP: " + reason})
			continue
		}

		ok, body := e.requestCandidate(t, c)
		if ok {
			if valid, reason := validateBody(c.Endpoint, body); !valid {
				ok = false
				body = "HTTP 200 but response content invalid: " + reason
			}
		}

		status := OutcomeFailed
		if ok {
			status = OutcomeOK
		}
		outcomes = append(outcomes, Outcome{Candidate: c, Status: status, Body: body})
		if ok && generationEndpoints[c.Endpoint] && successEndpoint == "" {
			successEndpoint = c.Label
		}
		logrus.Debugf("probe %s: ok=%v", c.Label, ok)
	}

	verdict, inList := inferSupport(outcomes, t.Model)
	echoed, echoedSource := extractEchoedModel(outcomes)

	report := &Report{
		Target:          t,
		Host:            host,
		Latency:         latency,
		Outcomes:        outcomes,
		Verdict:         verdict,
		ModelInList:     inList,
		EchoedModel:     echoed,
		EchoedSource:    echoedSource,
		SuccessEndpoint: successEndpoint,
		Conclusion:      synthesizeConclusion(outcomes, successEndpoint),
	}
	report.collectSucceeded()
	report.Detail = report.buildTranscript()
	return report, nil
}

// extractEchoedModel returns the model name echoed by the first generation
// success that carries one. Informational only; it never feeds the verdict.
func extractEchoedModel(outcomes []Outcome) (string, string) {
	for _, o := range outcomes {
		if o.OK() && generationEndpoints[o.Candidate.Endpoint] {
			if model := echoedModel(o.Body); model != "" {
				return model, o.Candidate.Endpoint
			}
		}
	}
	return "", ""
}
