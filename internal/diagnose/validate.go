package diagnose

import (
	"strings"

	"github.com/tidwall/gjson"
)

// validateBody decides whether a transport-successful response is semantically
// successful for the given endpoint key. HTTP 200 with garbage, an error field,
// or a missing required structure all count as failures.
func validateBody(endpoint, body string) (bool, string) {
	text := strings.TrimSpace(body)
	if text == "" {
		return false, "response body is empty"
	}
	obj, ok := ParsePayload(text)
	if !ok {
		return false, "response body is not valid JSON"
	}
	if hasValue(obj.Get("error")) {
		return false, "response contains an error field"
	}
	return specFor(endpoint).validate(obj)
}

// hasValue reports whether a field is present with a non-empty value. Empty
// strings, objects, and arrays do not count; some relays always emit
// "error": null alongside valid payloads.
func hasValue(r gjson.Result) bool {
	if !r.Exists() || r.Type == gjson.Null {
		return false
	}
	switch {
	case r.IsObject():
		return len(r.Map()) > 0
	case r.IsArray():
		return len(r.Array()) > 0
	case r.Type == gjson.String:
		return r.String() != ""
	}
	return true
}

func validateModels(obj gjson.Result) (bool, string) {
	if obj.Get("data").IsArray() {
		return true, ""
	}
	return false, "missing data list"
}

// validateCompletions accepts a choices list, or id+model strings for
// providers that omit choices on truncated replies.
func validateCompletions(obj gjson.Result) (bool, string) {
	if obj.Get("choices").IsArray() {
		return true, ""
	}
	if obj.Get("id").Type == gjson.String && obj.Get("model").Type == gjson.String {
		return true, ""
	}
	return false, "missing choices or id/model"
}

var responseMarkerKeys = []string{"id", "object", "model", "status", "response"}

func validateResponses(obj gjson.Result) (bool, string) {
	if obj.Get("output").IsArray() {
		return true, ""
	}
	if text := obj.Get("output_text"); text.Type == gjson.String && strings.TrimSpace(text.String()) != "" {
		return true, ""
	}
	for _, key := range responseMarkerKeys {
		if obj.Get(key).Exists() {
			return true, ""
		}
	}
	return false, "missing output/output_text or marker fields"
}

func validateEmbeddings(obj gjson.Result) (bool, string) {
	if obj.Get("data").IsArray() {
		return true, ""
	}
	return false, "missing data list"
}

func validateModerations(obj gjson.Result) (bool, string) {
	if obj.Get("results").IsArray() {
		return true, ""
	}
	return false, "missing results list"
}

func validateAny(gjson.Result) (bool, string) {
	return true, ""
}
