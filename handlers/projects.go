// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-stake/engine"
	"github.com/danielhkuo/quickly-stake/middleware"
	"github.com/danielhkuo/quickly-stake/models"
)

type ProjectHandler struct {
	eng *engine.Engine
}

func NewProjectHandler(eng *engine.Engine) *ProjectHandler {
	return &ProjectHandler{eng: eng}
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.eng.ListProjects(id.UID))
}

// MyProjects handles GET /projects/mine
func (h *ProjectHandler) MyProjects(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.eng.MyProjects(id.UID))
}

// ParticipatedProjects handles GET /projects/participated
func (h *ProjectHandler) ParticipatedProjects(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.eng.ParticipatedProjects(id.UID))
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.eng.CreateProject(r.Context(), id, engine.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		EndTime:     req.EndTime,
		MaxPoints:   req.MaxPoints,
	})
	if err != nil {
		writeEngineError(w, err, "create project")
		return
	}

	view, err := h.eng.GetProject(p.ID)
	if err != nil {
		writeEngineError(w, err, "create project")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, view)
}

// GetProject handles GET /projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}

	view, err := h.eng.GetProject(r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err, "get project")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// DeleteProject handles DELETE /projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	refunded, err := h.eng.DeleteProject(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err, "delete project")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DeleteProjectResponse{
		Refunded: refunded,
		Balance:  h.eng.Balance(id.UID),
	})
}

// HideProject handles POST /projects/{id}/hide
func (h *ProjectHandler) HideProject(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.eng.HideParticipation(r.Context(), id, r.PathValue("id")); err != nil {
		writeEngineError(w, err, "hide project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CastVote handles POST /projects/{id}/votes
func (h *ProjectHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := h.eng.CastVote(r.Context(), id, r.PathValue("id"), req.Option, req.Points)
	if err != nil {
		writeEngineError(w, err, "cast vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Project: view,
		Balance: h.eng.Balance(id.UID),
	})
}

// PublishResult handles POST /projects/{id}/result
func (h *ProjectHandler) PublishResult(w http.ResponseWriter, r *http.Request) {
	id, ok := actor(w, r)
	if !ok {
		return
	}

	var req models.PublishResultRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	settlement, err := h.eng.PublishResult(r.Context(), id, r.PathValue("id"), req.Result)
	if err != nil {
		writeEngineError(w, err, "publish result")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, settlement)
}
