package handler

import (
	"net/http"
	"time"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/tzconv"
)

// TimeHandler обрабатывает эндпоинты конвертации времени
type TimeHandler struct{}

// NewTimeHandler создает новый TimeHandler
func NewTimeHandler() *TimeHandler {
	return &TimeHandler{}
}

// UTCResponse содержит момент времени в UTC
type UTCResponse struct {
	UTC      time.Time `json:"utc"`
	Timezone string    `json:"timezone"`
}

// Local обрабатывает GET /time/local?at=...&timezone=...
func (h *TimeHandler) Local(w http.ResponseWriter, r *http.Request) {
	zone := r.URL.Query().Get("timezone")
	if zone == "" {
		HandleError(w, r, domain.Validationf("timezone is required"))
		return
	}

	at, err := queryInstant(r, "at")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	local, err := tzconv.ToLocal(at, zone)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, local)
}

// UTC обрабатывает GET /time/utc?date=YYYY-MM-DD&time=HH:MM&timezone=...
func (h *TimeHandler) UTC(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	zone := q.Get("timezone")
	if zone == "" {
		HandleError(w, r, domain.Validationf("timezone is required"))
		return
	}

	utc, err := tzconv.ToUTC(q.Get("date"), q.Get("time"), zone)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, UTCResponse{UTC: utc, Timezone: tzconv.NormalizeZone(zone)})
}
