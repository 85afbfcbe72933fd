package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pacewise/pacewise-progress/internal/assessment"
	"github.com/pacewise/pacewise-progress/internal/grading"
)

// POST /attempts
func StartAttemptHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID        string `json:"student_id"`
			CourseInstanceID string `json:"course_instance_id"`
			AssessmentID     string `json:"assessment_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.StudentID == "" || req.CourseInstanceID == "" || req.AssessmentID == "" {
			http.Error(w, "student_id, course_instance_id and assessment_id required", 400)
			return
		}
		a, err := svc.StartAttempt(r.Context(), req.StudentID, req.CourseInstanceID, req.AssessmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// POST /attempts/{attemptID}/submit
func SubmitAssessmentHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var req struct {
			StudentID        string           `json:"student_id"`
			CourseInstanceID string           `json:"course_instance_id"`
			AssessmentID     string           `json:"assessment_id"`
			Answers          []grading.Answer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.StudentID == "" || req.CourseInstanceID == "" || req.AssessmentID == "" {
			http.Error(w, "student_id, course_instance_id and assessment_id required", 400)
			return
		}
		if err := validateAnswers(req.Answers); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		res, err := svc.Submit(r.Context(), req.StudentID, req.CourseInstanceID, req.AssessmentID, attemptID, req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}
