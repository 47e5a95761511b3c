package http

import (
	"net/http"
)

// handleLatestSummary serves the most recent summary, or an explicit month
// when the month query parameter is set.
func (s *Server) handleLatestSummary(w http.ResponseWriter, r *http.Request) {
	userID := claimsFrom(r.Context()).UserID()

	if month := r.URL.Query().Get("month"); month != "" {
		summary, err := s.svc.Summaries.Get(r.Context(), userID, month)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, summary)
		return
	}

	summary, err := s.svc.Summaries.Latest(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.Summaries.List(r.Context(), claimsFrom(r.Context()).UserID())
	if err != nil {
		writeError(w, err)
		return
	}
	writeList(w, len(summaries), summaries)
}

// handleGetSummary serves one month's summary. Monthly snapshots only change
// when the aggregator reruns, so reads go through a short-lived cache.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID := claimsFrom(r.Context()).UserID()
	month := r.PathValue("month")

	cacheKey := userID + "|" + month
	if summary, ok := s.summaryCache.Get(cacheKey); ok {
		writeData(w, http.StatusOK, summary)
		return
	}

	summary, err := s.svc.Summaries.Get(r.Context(), userID, month)
	if err != nil {
		writeError(w, err)
		return
	}

	s.summaryCache.Set(cacheKey, summary)
	writeData(w, http.StatusOK, summary)
}
