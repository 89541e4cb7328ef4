package httpx

import (
	"net/http"

	"github.com/fixwave/fixwave-api/internal/search"
)

const maxSearchResults = 25 // Maximum number of category matches returned per query

// SearchHandlers provides HTTP handlers for category search.
type SearchHandlers struct {
	Matcher *search.Matcher
}

// Categories handles GET /api/categories/search?q=<query>&limit=<n>.
// An empty or unmatchable query yields an empty result list, not an error.
func (h *SearchHandlers) Categories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := ParseLimit(r, 10, maxSearchResults)

	results := h.Matcher.Match(query, limit)
	if results == nil {
		results = []search.Result{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}
