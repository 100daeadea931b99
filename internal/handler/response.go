package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/tzconv"
)

// ListResponse оборачивает списки в объект {"items": [...]}
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// MessageResponse представляет простой ответ с сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondWithJSON отправляет JSON ответ с указанным статус кодом
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// RespondWithList отправляет список в обертке items, nil превращается в []
func RespondWithList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	RespondWithJSON(w, r, http.StatusOK, ListResponse[T]{Items: items})
}

// decodeBody читает JSON тело запроса
func decodeBody(r *http.Request, v interface{}) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return domain.Validationf("invalid request body: %v", err)
	}
	return nil
}

// decodeOptionalBody читает JSON тело, пустое тело не считается ошибкой
func decodeOptionalBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return domain.Validationf("invalid request body: %v", err)
	}
	return nil
}

// queryInstant читает момент времени из query параметра, по умолчанию текущий.
// Значение без смещения считается UTC.
func queryInstant(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Now().UTC().Truncate(time.Second), nil
	}
	return tzconv.ParseInstant(value, "")
}
