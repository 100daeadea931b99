package repository

import (
	"context"

	"github.com/aidar/team-scheduler/internal/domain"
)

// MemberRepository определяет методы для работы с данными участников
type MemberRepository interface {
	// Create сохраняет нового участника (ErrMemberExists при совпадении ID)
	Create(ctx context.Context, member *domain.Member) error

	// GetByID получает участника по ID (ErrMemberNotFound если нет)
	GetByID(ctx context.Context, memberID string) (*domain.Member, error)

	// List возвращает всех участников в порядке создания
	List(ctx context.Context) ([]*domain.Member, error)

	// Modify применяет fn к копии участника и сохраняет результат. Чтение,
	// fn и запись выполняются под одной блокировкой записи; ошибка fn
	// отменяет изменение. fn не должна обращаться к этому же репозиторию.
	Modify(ctx context.Context, memberID string, fn func(*domain.Member) error) (*domain.Member, error)

	// Delete удаляет участника
	Delete(ctx context.Context, memberID string) error
}

// TeamRepository определяет методы для работы с данными команд
type TeamRepository interface {
	// Create создает новую команду
	Create(ctx context.Context, team *domain.Team) error

	// GetByID получает команду по ID
	GetByID(ctx context.Context, teamID string) (*domain.Team, error)

	// List возвращает все команды в порядке создания
	List(ctx context.Context) ([]*domain.Team, error)

	// Modify применяет fn к копии команды под блокировкой записи (см. MemberRepository.Modify)
	Modify(ctx context.Context, teamID string, fn func(*domain.Team) error) (*domain.Team, error)

	// Delete удаляет команду
	Delete(ctx context.Context, teamID string) error
}

// MeetingRepository определяет методы для работы с данными встреч
type MeetingRepository interface {
	// Create создает новую встречу
	Create(ctx context.Context, meeting *domain.Meeting) error

	// GetByID получает встречу по ID
	GetByID(ctx context.Context, meetingID string) (*domain.Meeting, error)

	// List возвращает все встречи в порядке создания
	List(ctx context.Context) ([]*domain.Meeting, error)

	// ListByTeam возвращает встречи команды
	ListByTeam(ctx context.Context, teamID string) ([]*domain.Meeting, error)

	// Modify применяет fn к копии встречи под блокировкой записи (см. MemberRepository.Modify)
	Modify(ctx context.Context, meetingID string, fn func(*domain.Meeting) error) (*domain.Meeting, error)

	// Delete удаляет встречу
	Delete(ctx context.Context, meetingID string) error
}

// VoteRepository определяет методы для работы с голосами
type VoteRepository interface {
	// Replace удаляет прежний голос пары (встреча, пользователь) и добавляет новый
	// в рамках одной критической секции
	Replace(ctx context.Context, vote *domain.Vote) error

	// ListByMeeting возвращает голоса встречи в порядке подачи
	ListByMeeting(ctx context.Context, meetingID string) ([]*domain.Vote, error)

	// DeleteByMeeting удаляет все голоса встречи
	DeleteByMeeting(ctx context.Context, meetingID string) error

	// DeleteByUser удаляет все голоса пользователя
	DeleteByUser(ctx context.Context, userID string) error
}

// Store объединяет репозитории всех коллекций
type Store struct {
	Members  MemberRepository
	Teams    TeamRepository
	Meetings MeetingRepository
	Votes    VoteRepository
}
