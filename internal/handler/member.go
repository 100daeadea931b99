package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/service"
)

// MemberHandler обрабатывает эндпоинты участников
type MemberHandler struct {
	memberService   *service.MemberService
	scheduleService *service.ScheduleService
}

// NewMemberHandler создает новый MemberHandler
func NewMemberHandler(memberService *service.MemberService, scheduleService *service.ScheduleService) *MemberHandler {
	return &MemberHandler{
		memberService:   memberService,
		scheduleService: scheduleService,
	}
}

// CreateMemberRequest представляет тело запроса на создание участника
type CreateMemberRequest struct {
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Timezone     string               `json:"timezone"`
	Role         string               `json:"role"`
	Status       string               `json:"status"`
	Avatar       string               `json:"avatar"`
	Availability *domain.Availability `json:"availability"`
}

// UpdateMemberRequest представляет тело запроса на изменение участника
type UpdateMemberRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Timezone *string `json:"timezone"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
	Avatar   *string `json:"avatar"`
}

// AvailabilityResponse представляет недельную сетку участника
type AvailabilityResponse struct {
	MemberID     string              `json:"memberId"`
	Availability domain.Availability `json:"availability"`
}

// LegacyAvailabilityRequest содержит старый вектор из 24 флагов
type LegacyAvailabilityRequest struct {
	Availability []int `json:"availability"`
}

// List обрабатывает GET /members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.List(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, members)
}

// Create обрабатывает POST /members
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	member, err := h.memberService.Create(r.Context(), service.MemberInput{
		Name:         req.Name,
		Email:        req.Email,
		Timezone:     req.Timezone,
		Role:         req.Role,
		Status:       req.Status,
		Avatar:       req.Avatar,
		Availability: req.Availability,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, member)
}

// Get обрабатывает GET /members/{id}
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, member)
}

// Update обрабатывает PUT /members/{id}
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	member, err := h.memberService.Update(r.Context(), chi.URLParam(r, "id"), service.MemberUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Timezone: req.Timezone,
		Role:     req.Role,
		Status:   req.Status,
		Avatar:   req.Avatar,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, member)
}

// Delete обрабатывает DELETE /members/{id}
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.memberService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAvailability обрабатывает GET /members/{id}/availability
func (h *MemberHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "id")
	grid, err := h.memberService.Availability(r.Context(), memberID)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, AvailabilityResponse{MemberID: memberID, Availability: grid})
}

// SetAvailability обрабатывает PUT /members/{id}/availability.
// Тело запроса это объект day_<d>_slot_<h> -> bool, сетка заменяется целиком.
func (h *MemberHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var grid domain.Availability
	if err := decodeBody(r, &grid); err != nil {
		HandleError(w, r, err)
		return
	}

	memberID := chi.URLParam(r, "id")
	saved, err := h.memberService.SetAvailability(r.Context(), memberID, grid)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, AvailabilityResponse{MemberID: memberID, Availability: saved})
}

// ImportAvailability обрабатывает POST /members/{id}/availability/import
func (h *MemberHandler) ImportAvailability(w http.ResponseWriter, r *http.Request) {
	var req LegacyAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	memberID := chi.URLParam(r, "id")
	saved, err := h.memberService.ImportLegacyAvailability(r.Context(), memberID, req.Availability)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, AvailabilityResponse{MemberID: memberID, Availability: saved})
}

// Teams обрабатывает GET /members/{id}/teams
func (h *MemberHandler) Teams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.memberService.Teams(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, teams)
}

// LocalTime обрабатывает GET /members/{id}/local-time?at=...
func (h *MemberHandler) LocalTime(w http.ResponseWriter, r *http.Request) {
	at, err := queryInstant(r, "at")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	lt, err := h.scheduleService.MemberLocalTime(r.Context(), chi.URLParam(r, "id"), at)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, lt)
}
