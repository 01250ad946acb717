package serv

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/sqlmentor/explaind/core"
)

type explainRequest struct {
	SQL         string `json:"sql"`
	ChallengeID string `json:"challengeId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	GradeStatus string `json:"gradeStatus"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
	Cached      bool   `json:"cached,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// healthResult is the liveness payload
type healthResult struct {
	Status string `json:"status"`
}

// handleExplain validates the request, derives the memo key, and serves the
// explanation from the store or from upstream. Upstream detail is logged,
// never returned to the caller.
func (s *ExplainService) handleExplain(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.conf.MaxBodyBytes)

	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			renderJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("%s must be a string", typeErr.Field),
			})
			return
		}
		renderJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.SQL == "" {
		renderJSON(w, http.StatusBadRequest, errorResponse{Error: "sql is required"})
		return
	}

	text, cached, err := s.explainer.Explain(r.Context(), core.Request{
		SQL:         req.SQL,
		ChallengeID: req.ChallengeID,
		Title:       req.Title,
		Description: req.Description,
		GradeStatus: req.GradeStatus,
	})
	if err != nil {
		s.log.Errorf("explanation upstream failed: %s", err)
		renderJSON(w, http.StatusBadGateway, errorResponse{Error: "failed to generate explanation"})
		return
	}

	renderJSON(w, http.StatusOK, explainResponse{Explanation: text, Cached: cached})
}

// handleHealth returns a static liveness acknowledgment
func (s *ExplainService) handleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, healthResult{Status: "ok"})
}

func renderJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
