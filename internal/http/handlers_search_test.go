package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchResults(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	results, ok := decodeBody(t, rec)["results"].([]any)
	require.True(t, ok, "results must be a JSON array")
	return results
}

func TestCategorySearch_IsPublic(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/categories/search?q=plumbing", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCategorySearch_RanksExactNameFirst(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/categories/search?q=plumbing", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	results := searchResults(t, rec)
	require.NotEmpty(t, results)

	top, ok := results[0].(map[string]any)
	require.True(t, ok)
	category, ok := top["category"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "plumbing", category["slug"])
}

func TestCategorySearch_EmptyQueryReturnsEmptyArray(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/categories/search", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, searchResults(t, rec))
}

func TestCategorySearch_LimitIsApplied(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	// "repair" hits several categories through keywords.
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/categories/search?q=repair&limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, searchResults(t, rec), 1)
}

func TestCategorySearch_EchoesQuery(t *testing.T) {
	t.Parallel()
	h := newRouterHarness(t)

	q := url.QueryEscape("leaky faucet")
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/categories/search?q="+q, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leaky faucet", decodeBody(t, rec)["query"])
}
