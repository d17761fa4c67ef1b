package diagnose

import "strings"

// Support is a tri-state availability verdict. Unknown means "not yet
// determined", which callers must distinguish from a determined no.
type Support int

const (
	SupportUnknown Support = iota
	SupportNo
	SupportYes
)

func (s Support) String() string {
	switch s {
	case SupportYes:
		return "yes"
	case SupportNo:
		return "no"
	}
	return "unknown"
}

// MarshalJSON renders the verdict as its string form.
func (s Support) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Verdict fuses the per-candidate signals into one model-support conclusion
// together with the endpoint key that produced it.
type Verdict struct {
	Supported Support `json:"supported"`
	Source    string  `json:"source,omitempty"`
}

// apply folds one signal into the verdict. A yes, once recorded, is final; a
// no only lands while the verdict is still open. Optimistic confirmation beats
// pessimistic guesses.
func (v Verdict) apply(supported bool, source string) Verdict {
	if v.Supported == SupportYes {
		return v
	}
	if supported {
		return Verdict{Supported: SupportYes, Source: source}
	}
	if v.Supported == SupportUnknown {
		return Verdict{Supported: SupportNo, Source: source}
	}
	return v
}

// generationEndpoints are the keys whose success implies the target model
// actually executed.
var generationEndpoints = map[string]bool{
	EndpointResponses:       true,
	EndpointChatCompletions: true,
	EndpointCompletions:     true,
}

var modelErrorKeywords = []string{
	"not found",
	"not allowed",
	"not supported",
	"does not exist",
	"invalid",
}

// isModelError applies the free-text heuristic for "this model was rejected".
// Substring matching on English keywords is knowingly imprecise against
// localized relay messages; the behavior is pinned by tests and should not be
// broadened casually.
func isModelError(body string) bool {
	msg := strings.ToLower(body)
	if !strings.Contains(msg, "model") {
		return false
	}
	for _, kw := range modelErrorKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// inferSupport threads the verdict accumulator through the ordered outcomes.
// Signal priority: validated generation success, then membership in the first
// non-empty /models listing, then the model-error heuristic on generation
// failures. The returned Support is the model-in-list signal on its own, since
// a relay may make a model callable without listing it.
func inferSupport(outcomes []Outcome, model string) (Verdict, Support) {
	var v Verdict
	inList := SupportUnknown

	for _, o := range outcomes {
		if o.OK() && generationEndpoints[o.Candidate.Endpoint] {
			v = v.apply(true, o.Candidate.Endpoint)
		}
		if o.Candidate.Endpoint == EndpointModels && o.OK() && inList == SupportUnknown {
			ids := modelIDs(o.Body)
			if len(ids) > 0 {
				_, member := ids[model]
				if member {
					inList = SupportYes
				} else {
					inList = SupportNo
				}
				v = v.apply(member, EndpointModels)
			}
		}
	}

	if v.Supported == SupportUnknown {
		for _, o := range outcomes {
			if o.Failed() && generationEndpoints[o.Candidate.Endpoint] && isModelError(o.Body) {
				v = v.apply(false, o.Candidate.Endpoint)
			}
		}
	}

	return v, inList
}
