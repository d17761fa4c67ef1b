package diagnose

import (
	"net/url"
	"strings"
)

// Endpoint keys probed against every base variant.
const (
	EndpointResponses       = "/responses"
	EndpointChatCompletions = "/chat/completions"
	EndpointCompletions     = "/completions"
	EndpointModels          = "/models"
	EndpointEmbeddings      = "/embeddings"
	EndpointModerations     = "/moderations"
)

// endpointCatalog is the fixed probing order: generation endpoints first so the
// sweep confirms model usability before touching auxiliary surfaces, then data
// endpoints, then endpoints that need resources the engine cannot synthesize.
var endpointCatalog = []string{
	EndpointResponses,
	EndpointChatCompletions,
	EndpointCompletions,
	EndpointModels,
	EndpointEmbeddings,
	EndpointModerations,
	"/realtime",
	"/assistants",
	"/batch",
	"/fine-tuning",
	"/images/generations",
	"/images/edits",
	"/videos",
	"/audio/speech",
	"/audio/transcriptions",
	"/audio/translations",
}

// skipReasons marks the endpoints that are never dispatched.
var skipReasons = map[string]string{
	"/realtime":             "realtime voice/text session (websocket connection)",
	"/assistants":           "assistants workflow (requires threads/tools setup)",
	"/batch":                "batch jobs (requires file upload)",
	"/fine-tuning":          "model fine-tuning (requires training config/files)",
	"/images/generations":   "image generation (requires image parameters)",
	"/images/edits":         "image editing (requires image files)",
	"/videos":               "video generation (requires video parameters)",
	"/audio/speech":         "speech synthesis (requires audio parameters)",
	"/audio/transcriptions": "audio transcription (requires audio files)",
	"/audio/translations":   "audio translation (requires audio files)",
}

// Candidate is one probe target: a catalog endpoint joined to a base variant.
type Candidate struct {
	Label    string `json:"label"`
	Endpoint string `json:"endpoint"`
	URL      string `json:"url"`
}

// BuildCandidates expands a cleaned base URL into the ordered, URL-deduplicated
// probe list. The base is probed as given and as a /v1-normalized sibling, so
// relays mounted at /proxy/v1 or at the bare host both get covered. First
// occurrence wins on duplicate URLs, which keeps the as-given base ahead of its
// sibling in precedence.
func BuildCandidates(base string) []Candidate {
	baseClean := strings.TrimRight(base, "/")
	bases := []string{baseClean}

	var basePath string
	parsed, err := url.Parse(baseClean)
	if err == nil {
		basePath = strings.TrimRight(parsed.Path, "/")
	}
	if strings.HasSuffix(basePath, "/v1") {
		if basePath != "/v1" && parsed != nil {
			bases = append(bases, parsed.Scheme+"://"+parsed.Host+"/v1")
		}
	} else {
		bases = append(bases, baseClean+"/v1")
	}

	seenBase := make(map[string]bool, len(bases))
	uniqBases := make([]string, 0, len(bases))
	for _, b := range bases {
		if seenBase[b] {
			continue
		}
		seenBase[b] = true
		uniqBases = append(uniqBases, b)
	}

	seenURL := make(map[string]bool, len(uniqBases)*len(endpointCatalog))
	candidates := make([]Candidate, 0, len(uniqBases)*len(endpointCatalog))
	for _, b := range uniqBases {
		prefix := ""
		if u, err := url.Parse(b); err == nil {
			prefix = strings.TrimRight(u.Path, "/")
		}
		for _, ep := range endpointCatalog {
			full := strings.TrimRight(b, "/") + ep
			if seenURL[full] {
				continue
			}
			seenURL[full] = true
			label := ep
			if prefix != "" {
				label = prefix + ep
			}
			candidates = append(candidates, Candidate{Label: label, Endpoint: ep, URL: full})
		}
	}
	return candidates
}
