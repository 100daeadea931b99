package memory

import (
	"context"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/repository"
)

// NewStore создает набор репозиториев в памяти
func NewStore() *repository.Store {
	return &repository.Store{
		Members:  NewMemberRepository(),
		Teams:    NewTeamRepository(),
		Meetings: NewMeetingRepository(),
		Votes:    NewVoteRepository(),
	}
}

// MemberRepository реализует repository.MemberRepository в памяти
type MemberRepository struct {
	t *table[*domain.Member]
}

// NewMemberRepository создает новый экземпляр MemberRepository
func NewMemberRepository() *MemberRepository {
	return &MemberRepository{t: newTable[*domain.Member]()}
}

// Create сохраняет нового участника
func (r *MemberRepository) Create(_ context.Context, member *domain.Member) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.get(member.ID); ok {
		return domain.ErrMemberExists
	}
	r.t.put(member.ID, member.Clone())
	return nil
}

// GetByID получает участника по ID
func (r *MemberRepository) GetByID(_ context.Context, memberID string) (*domain.Member, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	m, ok := r.t.get(memberID)
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return m.Clone(), nil
}

// List возвращает всех участников
func (r *MemberRepository) List(_ context.Context) ([]*domain.Member, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	rows := r.t.all()
	out := make([]*domain.Member, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.Clone())
	}
	return out, nil
}

// Modify изменяет участника под блокировкой таблицы
func (r *MemberRepository) Modify(_ context.Context, memberID string, fn func(*domain.Member) error) (*domain.Member, error) {
	return r.t.modify(memberID, domain.ErrMemberNotFound, (*domain.Member).Clone, fn)
}

// Delete удаляет участника
func (r *MemberRepository) Delete(_ context.Context, memberID string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(memberID) {
		return domain.ErrMemberNotFound
	}
	return nil
}

// TeamRepository реализует repository.TeamRepository в памяти
type TeamRepository struct {
	t *table[*domain.Team]
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository() *TeamRepository {
	return &TeamRepository{t: newTable[*domain.Team]()}
}

// Create создает новую команду
func (r *TeamRepository) Create(_ context.Context, team *domain.Team) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.get(team.ID); ok {
		return domain.ErrTeamExists
	}
	r.t.put(team.ID, team.Clone())
	return nil
}

// GetByID получает команду по ID
func (r *TeamRepository) GetByID(_ context.Context, teamID string) (*domain.Team, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	t, ok := r.t.get(teamID)
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return t.Clone(), nil
}

// List возвращает все команды
func (r *TeamRepository) List(_ context.Context) ([]*domain.Team, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	rows := r.t.all()
	out := make([]*domain.Team, 0, len(rows))
	for _, t := range rows {
		out = append(out, t.Clone())
	}
	return out, nil
}

// Modify изменяет команду под блокировкой таблицы
func (r *TeamRepository) Modify(_ context.Context, teamID string, fn func(*domain.Team) error) (*domain.Team, error) {
	return r.t.modify(teamID, domain.ErrTeamNotFound, (*domain.Team).Clone, fn)
}

// Delete удаляет команду
func (r *TeamRepository) Delete(_ context.Context, teamID string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(teamID) {
		return domain.ErrTeamNotFound
	}
	return nil
}

// MeetingRepository реализует repository.MeetingRepository в памяти
type MeetingRepository struct {
	t *table[*domain.Meeting]
}

// NewMeetingRepository создает новый экземпляр MeetingRepository
func NewMeetingRepository() *MeetingRepository {
	return &MeetingRepository{t: newTable[*domain.Meeting]()}
}

// Create создает новую встречу
func (r *MeetingRepository) Create(_ context.Context, meeting *domain.Meeting) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.get(meeting.ID); ok {
		return domain.ErrMeetingExists
	}
	r.t.put(meeting.ID, meeting.Clone())
	return nil
}

// GetByID получает встречу по ID
func (r *MeetingRepository) GetByID(_ context.Context, meetingID string) (*domain.Meeting, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	m, ok := r.t.get(meetingID)
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return m.Clone(), nil
}

// List возвращает все встречи
func (r *MeetingRepository) List(ctx context.Context) ([]*domain.Meeting, error) {
	return r.filter(func(*domain.Meeting) bool { return true }), nil
}

// ListByTeam возвращает встречи команды
func (r *MeetingRepository) ListByTeam(_ context.Context, teamID string) ([]*domain.Meeting, error) {
	return r.filter(func(m *domain.Meeting) bool { return m.TeamID == teamID }), nil
}

func (r *MeetingRepository) filter(keep func(*domain.Meeting) bool) []*domain.Meeting {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	out := make([]*domain.Meeting, 0)
	for _, m := range r.t.all() {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// Modify изменяет встречу под блокировкой таблицы
func (r *MeetingRepository) Modify(_ context.Context, meetingID string, fn func(*domain.Meeting) error) (*domain.Meeting, error) {
	return r.t.modify(meetingID, domain.ErrMeetingNotFound, (*domain.Meeting).Clone, fn)
}

// Delete удаляет встречу
func (r *MeetingRepository) Delete(_ context.Context, meetingID string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if !r.t.remove(meetingID) {
		return domain.ErrMeetingNotFound
	}
	return nil
}

// VoteRepository реализует repository.VoteRepository в памяти
type VoteRepository struct {
	t *table[domain.Vote]
}

// NewVoteRepository создает новый экземпляр VoteRepository
func NewVoteRepository() *VoteRepository {
	return &VoteRepository{t: newTable[domain.Vote]()}
}

// Replace заменяет голос пользователя за встречу
func (r *VoteRepository) Replace(_ context.Context, vote *domain.Vote) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for _, v := range r.t.all() {
		if v.MeetingID == vote.MeetingID && v.UserID == vote.UserID {
			r.t.remove(v.ID)
		}
	}
	r.t.put(vote.ID, *vote)
	return nil
}

// ListByMeeting возвращает голоса встречи
func (r *VoteRepository) ListByMeeting(_ context.Context, meetingID string) ([]*domain.Vote, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	out := make([]*domain.Vote, 0)
	for _, v := range r.t.all() {
		v := v
		if v.MeetingID == meetingID {
			out = append(out, &v)
		}
	}
	return out, nil
}

// DeleteByMeeting удаляет голоса встречи
func (r *VoteRepository) DeleteByMeeting(_ context.Context, meetingID string) error {
	return r.deleteWhere(func(v domain.Vote) bool { return v.MeetingID == meetingID })
}

// DeleteByUser удаляет голоса пользователя
func (r *VoteRepository) DeleteByUser(_ context.Context, userID string) error {
	return r.deleteWhere(func(v domain.Vote) bool { return v.UserID == userID })
}

func (r *VoteRepository) deleteWhere(match func(domain.Vote) bool) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for _, v := range r.t.all() {
		if match(v) {
			r.t.remove(v.ID)
		}
	}
	return nil
}
