package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/middleware"
	"github.com/aidar/team-scheduler/internal/service"
)

// TeamHandler обрабатывает эндпоинты команд
type TeamHandler struct {
	teamService     *service.TeamService
	scheduleService *service.ScheduleService
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(teamService *service.TeamService, scheduleService *service.ScheduleService) *TeamHandler {
	return &TeamHandler{
		teamService:     teamService,
		scheduleService: scheduleService,
	}
}

// CreateTeamRequest представляет тело запроса на создание команды
type CreateTeamRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Timezone    string   `json:"timezone"`
	Members     []string `json:"members"`
}

// UpdateTeamRequest представляет тело запроса на изменение команды
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Timezone    *string `json:"timezone"`
}

// MemberRequest указывает участника для добавления или передачи владения
type MemberRequest struct {
	MemberID string `json:"memberId"`
}

// List обрабатывает GET /teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, teams)
}

// Create обрабатывает POST /teams, создатель становится администратором
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), service.TeamInput{
		Name:        req.Name,
		Description: req.Description,
		Timezone:    req.Timezone,
		Members:     req.Members,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, team)
}

// Get обрабатывает GET /teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, team)
}

// Update обрабатывает PUT /teams/{id}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTeamRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.teamService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), service.TeamUpdate{
		Name:        req.Name,
		Description: req.Description,
		Timezone:    req.Timezone,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, team)
}

// Delete обрабатывает DELETE /teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members обрабатывает GET /teams/{id}/members
func (h *TeamHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.teamService.Members(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, members)
}

// AddMember обрабатывает POST /teams/{id}/members и POST /teams/{id}/members/{memberId}
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromRequest(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.teamService.AddMember(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), memberID)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, team)
}

// RemoveMember обрабатывает DELETE /teams/{id}/members/{memberId}
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.RemoveMember(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "memberId"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, team)
}

// TransferOwnership обрабатывает POST /teams/{id}/owner
func (h *TeamHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromRequest(r)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.teamService.TransferOwnership(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), memberID)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, team)
}

// LocalTimes обрабатывает GET /teams/{id}/local-times?at=...
func (h *TeamHandler) LocalTimes(w http.ResponseWriter, r *http.Request) {
	at, err := queryInstant(r, "at")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	entries, err := h.scheduleService.LocalTimes(r.Context(), chi.URLParam(r, "id"), at)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, entries)
}

// memberIDFromRequest берет memberId из пути, а если его нет, из тела запроса
func memberIDFromRequest(r *http.Request) (string, error) {
	if id := chi.URLParam(r, "memberId"); id != "" {
		return id, nil
	}
	var req MemberRequest
	if err := decodeBody(r, &req); err != nil {
		return "", err
	}
	if req.MemberID == "" {
		return "", domain.Validationf("memberId is required")
	}
	return req.MemberID, nil
}
