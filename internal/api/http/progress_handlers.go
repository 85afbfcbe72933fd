package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pacewise/pacewise-progress/internal/progress"
)

// POST /progress/initialize
func InitializeProgressHandler(ini *progress.Initializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CourseInstanceID string                `json:"course_instance_id"`
			StudentIDs       []string              `json:"student_ids"`
			Modules          []progress.ModuleNode `json:"modules"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.CourseInstanceID == "" || len(req.StudentIDs) == 0 || len(req.Modules) == 0 {
			http.Error(w, "course_instance_id, student_ids and modules required", 400)
			return
		}
		res, err := ini.Initialize(r.Context(), req.CourseInstanceID, req.StudentIDs, req.Modules)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /progress/section-items/{sectionItemID}/advance
func AdvanceSectionItemHandler(engine *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "sectionItemID")
		var req struct {
			CourseInstanceID string `json:"course_instance_id"`
			StudentID        string `json:"student_id"`
			Cascade          *bool  `json:"cascade"` // default true
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if itemID == "" || req.CourseInstanceID == "" || req.StudentID == "" {
			http.Error(w, "course_instance_id and student_id required", 400)
			return
		}
		cascade := req.Cascade == nil || *req.Cascade
		t, err := engine.AdvanceSectionItem(r.Context(), req.CourseInstanceID, req.StudentID, itemID, cascade)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(t)
	}
}

type statusResp struct {
	Status progress.Status `json:"status"`
}

// GET /progress/course?course_instance_id=..&student_id=..
func GetCourseProgressHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cid, sid := r.URL.Query().Get("course_instance_id"), r.URL.Query().Get("student_id")
		if cid == "" || sid == "" {
			http.Error(w, "course_instance_id and student_id required", 400)
			return
		}
		st, err := store.GetCourseProgress(r.Context(), cid, sid)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(statusResp{Status: st})
	}
}

// GET /progress/modules/{moduleID}
func GetModuleProgressHandler(store progress.Store) http.HandlerFunc {
	return entityProgressHandler("moduleID", store.GetModuleProgress)
}

// GET /progress/sections/{sectionID}
func GetSectionProgressHandler(store progress.Store) http.HandlerFunc {
	return entityProgressHandler("sectionID", store.GetSectionProgress)
}

// GET /progress/section-items/{sectionItemID}
func GetSectionItemProgressHandler(store progress.Store) http.HandlerFunc {
	return entityProgressHandler("sectionItemID", store.GetSectionItemProgress)
}

func entityProgressHandler(param string, get func(ctx context.Context, courseInstanceID, studentID, entityID string) (progress.Status, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, param)
		cid, sid := r.URL.Query().Get("course_instance_id"), r.URL.Query().Get("student_id")
		if id == "" || cid == "" || sid == "" {
			http.Error(w, "course_instance_id and student_id required", 400)
			return
		}
		st, err := get(r.Context(), cid, sid, id)
		if err != nil {
			writeError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(statusResp{Status: st})
	}
}
