// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "mergington-activities/internal/common/errors"
)

const indexPath = "/static/index.html"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, indexPath, http.StatusTemporaryRedirect)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.activities.List(r.Context())
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	activityName := r.PathValue("activity_name")

	query := r.URL.Query()
	if !query.Has("email") {
		stdErr := s.errors.HandleHTTPError(w, r, apperrors.NewValidationFailedError("email query parameter is required"))
		s.obs.RecordSignup(r.Context(), "", string(stdErr.Code))
		return
	}
	email := query.Get("email")

	resp, err := s.activities.Signup(r.Context(), activityName, email)
	if err != nil {
		stdErr := s.errors.HandleHTTPError(w, r, err)
		s.obs.RecordSignup(r.Context(), "", string(stdErr.Code))
		s.obs.RecordSignupDuration(r.Context(), time.Since(start), string(stdErr.Code))
		return
	}

	s.obs.RecordSignup(r.Context(), activityName, "success")
	s.obs.RecordSignupDuration(r.Context(), time.Since(start), "success")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.activities.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness check failed", map[string]interface{}{
			"requestId": RequestIDFrom(r.Context()),
			"error":     err,
		})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
