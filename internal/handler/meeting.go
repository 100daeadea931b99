package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/team-scheduler/internal/middleware"
	"github.com/aidar/team-scheduler/internal/service"
)

// MeetingHandler обрабатывает эндпоинты встреч и голосования
type MeetingHandler struct {
	meetingService  *service.MeetingService
	scheduleService *service.ScheduleService
}

// NewMeetingHandler создает новый MeetingHandler
func NewMeetingHandler(meetingService *service.MeetingService, scheduleService *service.ScheduleService) *MeetingHandler {
	return &MeetingHandler{
		meetingService:  meetingService,
		scheduleService: scheduleService,
	}
}

// MeetingOption представляет вариант времени в старом формате options[]
type MeetingOption struct {
	TimeSlot string `json:"timeSlot"`
}

// CreateMeetingRequest представляет тело запроса на создание встречи
type CreateMeetingRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TeamID        string          `json:"teamId"`
	Timezone      string          `json:"timezone"`
	TimeSlots     []string        `json:"timeSlots"`
	Options       []MeetingOption `json:"options"`
	ScheduledTime string          `json:"scheduledTime"`
	VotingStart   string          `json:"votingStart"`
	VotingEnd     string          `json:"votingEnd"`
	Duration      *int            `json:"duration"`
}

// slots возвращает timeSlots, а при их отсутствии варианты из options
func (req CreateMeetingRequest) slots() []string {
	if len(req.TimeSlots) > 0 {
		return req.TimeSlots
	}
	slots := make([]string, 0, len(req.Options))
	for _, opt := range req.Options {
		slots = append(slots, opt.TimeSlot)
	}
	return slots
}

// UpdateMeetingRequest представляет тело запроса на изменение встречи.
// Поля вне списка разрешенных игнорируются.
type UpdateMeetingRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	TimeSlots     *[]string `json:"timeSlots"`
	ScheduledTime *string   `json:"scheduledTime"`
	VotingStart   *string   `json:"votingStart"`
	VotingEnd     *string   `json:"votingEnd"`
	Duration      *int      `json:"duration"`
	Timezone      *string   `json:"timezone"`
	Status        *string   `json:"status"`
}

// VoteRequest представляет голос за вариант времени
type VoteRequest struct {
	TimeSlot   string `json:"timeSlot"`
	Preference string `json:"preference"`
}

// FinalizeRequest задает итоговое время встречи, пустое значение выбирает лидера голосования
type FinalizeRequest struct {
	TimeSlot string `json:"timeSlot"`
}

// List обрабатывает GET /meetings
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.meetingService.List(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, meetings)
}

// ListByTeam обрабатывает GET /teams/{id}/meetings
func (h *MeetingHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.meetingService.ListByTeam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, meetings)
}

// Create обрабатывает POST /meetings и POST /teams/{id}/meetings.
// Команда из пути имеет приоритет над teamId в теле.
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMeetingRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}
	if teamID := chi.URLParam(r, "id"); teamID != "" {
		req.TeamID = teamID
	}

	meeting, err := h.meetingService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), service.MeetingInput{
		Title:         req.Title,
		Description:   req.Description,
		TeamID:        req.TeamID,
		Timezone:      req.Timezone,
		TimeSlots:     req.slots(),
		ScheduledTime: req.ScheduledTime,
		VotingStart:   req.VotingStart,
		VotingEnd:     req.VotingEnd,
		Duration:      req.Duration,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, meeting)
}

// Get обрабатывает GET /meetings/{id}
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.meetingService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, meeting)
}

// Update обрабатывает PUT /meetings/{id}
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeetingRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	meeting, err := h.meetingService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), service.MeetingUpdate{
		Title:         req.Title,
		Description:   req.Description,
		TimeSlots:     req.TimeSlots,
		ScheduledTime: req.ScheduledTime,
		VotingStart:   req.VotingStart,
		VotingEnd:     req.VotingEnd,
		Duration:      req.Duration,
		Timezone:      req.Timezone,
		Status:        req.Status,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, meeting)
}

// Delete обрабатывает DELETE /meetings/{id}
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.meetingService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Votes обрабатывает GET /meetings/{id}/votes
func (h *MeetingHandler) Votes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.meetingService.Votes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, votes)
}

// SubmitVote обрабатывает POST /meetings/{id}/votes.
// Голосующий определяется по токену, повторный голос заменяет предыдущий.
func (h *MeetingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	vote, err := h.meetingService.SubmitVote(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserIDFromContext(r.Context()),
		req.TimeSlot,
		req.Preference,
	)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, vote)
}

// Results обрабатывает GET /meetings/{id}/results
func (h *MeetingHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.meetingService.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, results)
}

// Participants обрабатывает GET /meetings/{id}/participants
func (h *MeetingHandler) Participants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.meetingService.Participants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, participants)
}

// Availability обрабатывает GET /meetings/{id}/availability
func (h *MeetingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	slots, err := h.scheduleService.SlotAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithList(w, r, slots)
}

// Finalize обрабатывает POST /meetings/{id}/finalize, тело запроса необязательно
func (h *MeetingHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	meeting, err := h.meetingService.Finalize(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.TimeSlot)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, meeting)
}
