package server

import "net/http"

// handleListTags serves GET /tags?profile=&slug= — tags sorted by
// frecency (spec §4.6).
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	slug := resolveProfileSlug(r)

	ds, err := s.pool.get(r.Context(), userID, slug)
	if err != nil {
		writeServiceError(w, "server.handleListTags", err)
		return
	}

	result := ds.GetTagsByFrecency(r.Context())
	if !result.Success {
		writeServiceError(w, "server.handleListTags", result.Err)
		return
	}

	writeJSON(w, http.StatusOK, result.Data)
}
