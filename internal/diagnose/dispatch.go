package diagnose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

const (
	// browserUserAgent is sent on every probe; several gateways reject
	// unknown agents outright.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	// Fixed side-channel models for endpoints that need one of their own.
	embeddingTestModel  = "text-embedding-3-small"
	moderationTestModel = "omni-moderation-latest"
)

// endpointSpec drives dispatch and validation for one endpoint key: the HTTP
// verb, the request body to synthesize, and the structural check applied to a
// transport-successful response.
type endpointSpec struct {
	method   string
	payload  func(model string) any
	validate func(obj gjson.Result) (bool, string)
}

var endpointSpecs = map[string]endpointSpec{
	EndpointModels: {
		method:   http.MethodGet,
		validate: validateModels,
	},
	EndpointModerations: {
		method: http.MethodPost,
		payload: func(string) any {
			return map[string]any{"model": moderationTestModel, "input": "hello"}
		},
		validate: validateModerations,
	},
	EndpointEmbeddings: {
		method: http.MethodPost,
		payload: func(string) any {
			return map[string]any{"model": embeddingTestModel, "input": "hello"}
		},
		validate: validateEmbeddings,
	},
	EndpointChatCompletions: {
		method: http.MethodPost,
		payload: func(model string) any {
			return map[string]any{
				"model":    model,
				"messages": []map[string]string{{"role": "user", "content": "hello"}},
			}
		},
		validate: validateCompletions,
	},
	EndpointCompletions: {
		method: http.MethodPost,
		payload: func(model string) any {
			return map[string]any{"model": model, "prompt": "hello"}
		},
		validate: validateCompletions,
	},
	EndpointResponses: {
		method: http.MethodPost,
		payload: func(model string) any {
			return map[string]any{"model": model, "input": "hello"}
		},
		validate: validateResponses,
	},
}

// generationSpec covers any endpoint key without an entry of its own: POST a
// generation-shaped payload, require nothing structurally.
var generationSpec = endpointSpec{
	method: http.MethodPost,
	payload: func(model string) any {
		return map[string]any{"model": model, "input": "hello"}
	},
	validate: validateAny,
}

func specFor(endpoint string) endpointSpec {
	if spec, ok := endpointSpecs[endpoint]; ok {
		return spec
	}
	return generationSpec
}

// requestCandidate performs one probe. Transport failures and non-2xx statuses
// both come back as ok=false; the second form carries "HTTP <code>: <body>".
func (e *Engine) requestCandidate(t Target, c Candidate) (bool, string) {
	spec := specFor(c.Endpoint)

	var body io.Reader
	if spec.payload != nil {
		raw, err := json.Marshal(spec.payload(t.Model))
		if err != nil {
			return false, fmt.Sprintf("failed to marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(spec.method, c.URL, body)
	if err != nil {
		return false, err.Error()
	}
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUserAgent)
	if t.OrgID != "" {
		req.Header.Set("OpenAI-Organization", t.OrgID)
	}

	client := *e.client
	client.Timeout = t.Timeout
	resp, err := client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := text
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return false, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, reason)
	}
	return true, text
}
