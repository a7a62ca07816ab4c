package handler

import (
	"encoding/json"
	"net/http"

	"algoforge/internal/api/middleware"
	"algoforge/internal/app/service"
	"algoforge/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService    *service.ProblemService
	submissionService *service.SubmissionService
}

func NewProblemHandler(ps *service.ProblemService, ss *service.SubmissionService) *ProblemHandler {
	return &ProblemHandler{problemService: ps, submissionService: ss}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Post("/create", h.createProblem)
		admin.Put("/update/{problemID}", h.updateProblem)
		admin.Delete("/delete/{problemID}", h.deleteProblem)
	})

	r.Get("/problemById/{problemID}", h.getProblemByID)
	r.Get("/getAllProblem", h.listProblems)
	r.Get("/problemSolvedByUser", h.listSolvedProblems)
	r.Get("/submittedProblem/{problemID}", h.listSubmissions)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user identity")
		return
	}

	var req service.ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problemID")

	var req service.ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	problem, err := h.problemService.UpdateProblem(r.Context(), problemID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problemID")

	if err := h.problemService.DeleteProblem(r.Context(), problemID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "problem deleted"})
}

func (h *ProblemHandler) getProblemByID(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problemID")
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	problem, err := h.problemService.GetProblemDetails(r.Context(), problemID, role)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problemService.ListProblems(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) listSolvedProblems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user identity")
		return
	}

	solved, err := h.submissionService.ListSolvedProblems(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solved)
}

func (h *ProblemHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user identity")
		return
	}
	problemID := chi.URLParam(r, "problemID")

	subs, err := h.submissionService.ListForProblem(r.Context(), userID, problemID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}
