package diagnose

import (
	"fmt"
	"strings"
)

const (
	conclusionHealthyFmt          = "link is healthy (request succeeded via endpoint %s)"
	conclusionModelsOnly          = "only /models is reachable; API access may be restricted"
	conclusionAuth                = "credentials/key are likely wrong"
	conclusionEndpointUnsupported = "endpoint likely unsupported (try a different diagnostic endpoint)"
	conclusionRelayBroken         = "suspected relay-side malfunction"
)

// synthesizeConclusion turns the full outcome set into one ranked verdict
// string. successEndpoint is the label of the first validated generation
// success, or empty.
func synthesizeConclusion(outcomes []Outcome, successEndpoint string) string {
	if successEndpoint != "" {
		return fmt.Sprintf(conclusionHealthyFmt, successEndpoint)
	}
	for _, o := range outcomes {
		if o.OK() && strings.HasSuffix(o.Candidate.Label, EndpointModels) {
			return conclusionModelsOnly
		}
	}

	var sb strings.Builder
	for _, o := range outcomes {
		if o.Failed() {
			sb.WriteString(strings.ToLower(o.Body))
			sb.WriteString(" ")
		}
	}
	failures := sb.String()
	switch {
	case strings.Contains(failures, "401"), strings.Contains(failures, "403"), strings.Contains(failures, "auth"):
		return conclusionAuth
	case strings.Contains(failures, "404"), strings.Contains(failures, "not found"):
		return conclusionEndpointUnsupported
	}
	return conclusionRelayBroken
}
