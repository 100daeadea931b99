package domain

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Конкретные ошибки ниже разворачиваются (Unwrap) в один из них,
// поэтому errors.Is(err, ErrNotFound) работает для любой "не найдено" ошибки.
var (
	// ErrValidation возвращается при некорректных входных данных
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized возвращается при отсутствующих или невалидных учетных данных
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden возвращается когда пользователь аутентифицирован, но действие запрещено
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound возвращается когда ресурс не найден
	ErrNotFound = errors.New("resource not found")

	// ErrConflict возвращается при нарушении уникальности или конфликте состояния
	ErrConflict = errors.New("conflict")
)

// Доменные ошибки
var (
	ErrMemberNotFound  = newKindError(ErrNotFound, "member not found")
	ErrTeamNotFound    = newKindError(ErrNotFound, "team not found")
	ErrMeetingNotFound = newKindError(ErrNotFound, "meeting not found")
	ErrNotTeamMember   = newKindError(ErrNotFound, "member is not in this team")

	ErrMemberExists      = newKindError(ErrConflict, "member already exists")
	ErrMemberNameTaken   = newKindError(ErrConflict, "member with this name already exists")
	ErrEmailTaken        = newKindError(ErrConflict, "member with this email already exists")
	ErrTeamExists        = newKindError(ErrConflict, "team with this name already exists")
	ErrAlreadyTeamMember = newKindError(ErrConflict, "member is already in this team")
	ErrAdminRemoval      = newKindError(ErrConflict, "team admin cannot leave while other members remain; transfer ownership first")
	ErrMeetingExists     = newKindError(ErrConflict, "meeting already exists")
	ErrVotingClosed      = newKindError(ErrConflict, "voting is not open for this meeting")

	ErrNotTeamAdmin     = newKindError(ErrForbidden, "only the team admin can perform this action")
	ErrNotMeetingOwner  = newKindError(ErrForbidden, "only the meeting creator or team admin can perform this action")
	ErrVoterNotInTeam   = newKindError(ErrForbidden, "user is not a member of this meeting's team")
	ErrCreatorNotInTeam = newKindError(ErrForbidden, "only team members can create meetings")

	ErrInvalidCredentials = newKindError(ErrUnauthorized, "invalid credentials")
	ErrInvalidToken       = newKindError(ErrUnauthorized, "invalid or expired token")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Validationf создает ошибку валидации с форматированным сообщением
func Validationf(format string, args ...any) error {
	return newKindError(ErrValidation, fmt.Sprintf(format, args...))
}

// Notfoundf создает ошибку "не найдено" с форматированным сообщением
func Notfoundf(format string, args ...any) error {
	return newKindError(ErrNotFound, fmt.Sprintf(format, args...))
}

// ErrorCode представляет коды ошибок API
type ErrorCode string

// Коды ошибок API
const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR" // Некорректный запрос
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"     // Нет или невалидный токен
	CodeForbidden    ErrorCode = "FORBIDDEN"        // Недостаточно прав
	CodeNotFound     ErrorCode = "NOT_FOUND"        // Ресурс не найден
	CodeConflict     ErrorCode = "CONFLICT"         // Конфликт уникальности/состояния
	CodeRateLimited  ErrorCode = "RATE_LIMITED"     // Превышен лимит запросов
	CodeInternal     ErrorCode = "INTERNAL_ERROR"   // Внутренняя ошибка
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}
