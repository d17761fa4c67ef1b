package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCandidates_TwoVariantsWithoutV1(t *testing.T) {
	candidates := BuildCandidates("https://api.example.com")

	// as-given plus the /v1 sibling, 16 keys each, no URL collisions
	assert.Len(t, candidates, 2*len(endpointCatalog))
	assert.Equal(t, "https://api.example.com/responses", candidates[0].URL)
	assert.Equal(t, EndpointResponses, candidates[0].Endpoint)
	assert.Equal(t, "/responses", candidates[0].Label)
	assert.Equal(t, "https://api.example.com/v1/responses", candidates[len(endpointCatalog)].URL)
	assert.Equal(t, "/v1/responses", candidates[len(endpointCatalog)].Label)
}

func TestBuildCandidates_RootV1SingleVariant(t *testing.T) {
	candidates := BuildCandidates("https://api.example.com/v1")

	assert.Len(t, candidates, len(endpointCatalog))
	for _, c := range candidates {
		assert.Contains(t, c.URL, "https://api.example.com/v1/")
	}
}

func TestBuildCandidates_NestedV1StripsToRoot(t *testing.T) {
	candidates := BuildCandidates("https://relay.example.com/proxy/v1")

	require.Len(t, candidates, 2*len(endpointCatalog))
	assert.Equal(t, "https://relay.example.com/proxy/v1/responses", candidates[0].URL)
	assert.Equal(t, "/proxy/v1/responses", candidates[0].Label)
	assert.Equal(t, "https://relay.example.com/v1/responses", candidates[len(endpointCatalog)].URL)
}

func TestBuildCandidates_TrailingSlashTrimmed(t *testing.T) {
	a := BuildCandidates("https://api.example.com/v1")
	b := BuildCandidates("https://api.example.com/v1/")
	assert.Equal(t, a, b)
}

func TestBuildCandidates_URLsUnique(t *testing.T) {
	for _, base := range []string{
		"https://api.example.com",
		"https://api.example.com/v1",
		"https://relay.example.com/proxy/v1",
	} {
		candidates := BuildCandidates(base)
		seen := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			assert.Falsef(t, seen[c.URL], "duplicate URL %s for base %s", c.URL, base)
			seen[c.URL] = true
		}
	}
}

func TestBuildCandidates_Idempotent(t *testing.T) {
	first := BuildCandidates("https://api.example.com")
	second := BuildCandidates("https://api.example.com")
	assert.Equal(t, first, second)
}

func TestBuildCandidates_GenerationEndpointsLead(t *testing.T) {
	candidates := BuildCandidates("https://api.example.com/v1")
	require.True(t, len(candidates) >= 3)
	assert.Equal(t, EndpointResponses, candidates[0].Endpoint)
	assert.Equal(t, EndpointChatCompletions, candidates[1].Endpoint)
	assert.Equal(t, EndpointCompletions, candidates[2].Endpoint)
}

func TestSkipReasons_CoverResourceEndpoints(t *testing.T) {
	assert.Len(t, skipReasons, 10)
	for key := range skipReasons {
		assert.Contains(t, endpointCatalog, key)
	}
	for _, key := range []string{EndpointResponses, EndpointChatCompletions, EndpointCompletions, EndpointModels, EndpointEmbeddings, EndpointModerations} {
		_, skipped := skipReasons[key]
		assert.Falsef(t, skipped, "%s must be dispatched", key)
	}
}
