package diagnose

import (
	"strings"

	"github.com/tidwall/gjson"
)

// payloadParser attempts to recover a JSON object from a response body.
type payloadParser func(text string) (gjson.Result, bool)

// Relays answer with plain JSON, SSE frames, or JSON buried in an HTML error
// page. The parsers are tried in order and the first hit wins.
var payloadParsers = []payloadParser{
	parseDirectJSON,
	parseSSEFrames,
	parseBraceSpan,
}

// ParsePayload recovers a JSON object from a relay response body.
func ParsePayload(body string) (gjson.Result, bool) {
	text := strings.TrimSpace(body)
	if text == "" {
		return gjson.Result{}, false
	}
	for _, parse := range payloadParsers {
		if obj, ok := parse(text); ok {
			return obj, true
		}
	}
	return gjson.Result{}, false
}

func parseDirectJSON(text string) (gjson.Result, bool) {
	if !gjson.Valid(text) {
		return gjson.Result{}, false
	}
	if obj := gjson.Parse(text); obj.IsObject() {
		return obj, true
	}
	return gjson.Result{}, false
}

// parseSSEFrames scans for "data: ..." frames and keeps the last JSON object,
// so a truncated stream still yields the freshest state.
func parseSSEFrames(text string) (gjson.Result, bool) {
	var last gjson.Result
	found := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}
		if !gjson.Valid(payload) {
			continue
		}
		if obj := gjson.Parse(payload); obj.IsObject() {
			last = obj
			found = true
		}
	}
	return last, found
}

// parseBraceSpan tries the outermost {...} substring as a last resort.
func parseBraceSpan(text string) (gjson.Result, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return gjson.Result{}, false
	}
	snippet := text[start : end+1]
	if !gjson.Valid(snippet) {
		return gjson.Result{}, false
	}
	if obj := gjson.Parse(snippet); obj.IsObject() {
		return obj, true
	}
	return gjson.Result{}, false
}

// modelIDs collects the model ids of a /models listing body.
func modelIDs(body string) map[string]struct{} {
	obj, ok := ParsePayload(body)
	if !ok {
		return nil
	}
	items := obj.Get("data")
	if !items.IsArray() {
		return nil
	}
	ids := make(map[string]struct{})
	for _, item := range items.Array() {
		if id := item.Get("id"); id.Type == gjson.String {
			ids[id.String()] = struct{}{}
		}
	}
	return ids
}

// echoedModel extracts the model name a generation response reports about
// itself, checking the nested response.model field some relays use.
func echoedModel(body string) string {
	obj, ok := ParsePayload(body)
	if !ok {
		return ""
	}
	if m := obj.Get("model"); m.Type == gjson.String {
		return m.String()
	}
	if m := obj.Get("response.model"); m.Type == gjson.String {
		return m.String()
	}
	return ""
}
