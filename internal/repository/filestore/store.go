package filestore

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/repository"
)

// Имена файлов коллекций
const (
	membersFile  = "members.json"
	teamsFile    = "teams.json"
	meetingsFile = "meetings.json"
	votesFile    = "votes.json"
)

// NewStore создает хранилище в каталоге dir, создавая каталог при необходимости
func NewStore(dir string) (*repository.Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &repository.Store{
		Members:  &MemberRepository{c: newCollection[[]memberRecord](dir, membersFile)},
		Teams:    &TeamRepository{c: newCollection[map[string]*domain.Team](dir, teamsFile)},
		Meetings: &MeetingRepository{c: newCollection[[]*domain.Meeting](dir, meetingsFile)},
		Votes:    &VoteRepository{c: newCollection[[]*domain.Vote](dir, votesFile)},
	}, nil
}

// memberRecord хранит участника вместе с хешем пароля, который скрыт из API
type memberRecord struct {
	*domain.Member
	PasswordHash string `json:"passwordHash,omitempty"`
}

func (r memberRecord) member() *domain.Member {
	m := r.Member.Clone()
	m.PasswordHash = r.PasswordHash
	return m
}

// MemberRepository хранит участников в members.json
type MemberRepository struct {
	c *collection[[]memberRecord]
}

// Create сохраняет нового участника
func (r *MemberRepository) Create(_ context.Context, member *domain.Member) error {
	return r.c.update("member_create", func(doc *[]memberRecord) error {
		for _, rec := range *doc {
			if rec.ID == member.ID {
				return domain.ErrMemberExists
			}
		}
		*doc = append(*doc, memberRecord{Member: member.Clone(), PasswordHash: member.PasswordHash})
		return nil
	})
}

// GetByID получает участника по ID
func (r *MemberRepository) GetByID(_ context.Context, memberID string) (*domain.Member, error) {
	var found *domain.Member
	err := r.c.view("member_get", func(doc []memberRecord) error {
		for _, rec := range doc {
			if rec.ID == memberID {
				found = rec.member()
				return nil
			}
		}
		return domain.ErrMemberNotFound
	})
	return found, err
}

// List возвращает всех участников
func (r *MemberRepository) List(_ context.Context) ([]*domain.Member, error) {
	out := make([]*domain.Member, 0)
	err := r.c.view("member_list", func(doc []memberRecord) error {
		for _, rec := range doc {
			out = append(out, rec.member())
		}
		return nil
	})
	return out, err
}

// Modify изменяет участника в рамках одного цикла чтения и записи файла
func (r *MemberRepository) Modify(_ context.Context, memberID string, fn func(*domain.Member) error) (*domain.Member, error) {
	var out *domain.Member
	err := r.c.update("member_modify", func(doc *[]memberRecord) error {
		for i, rec := range *doc {
			if rec.ID != memberID {
				continue
			}
			m := rec.member()
			if err := fn(m); err != nil {
				return err
			}
			(*doc)[i] = memberRecord{Member: m.Clone(), PasswordHash: m.PasswordHash}
			out = m
			return nil
		}
		return domain.ErrMemberNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete удаляет участника
func (r *MemberRepository) Delete(_ context.Context, memberID string) error {
	return r.c.update("member_delete", func(doc *[]memberRecord) error {
		n := len(*doc)
		*doc = slices.DeleteFunc(*doc, func(rec memberRecord) bool { return rec.ID == memberID })
		if len(*doc) == n {
			return domain.ErrMemberNotFound
		}
		return nil
	})
}

// TeamRepository хранит команды в teams.json как объект id -> команда
type TeamRepository struct {
	c *collection[map[string]*domain.Team]
}

// Create создает новую команду
func (r *TeamRepository) Create(_ context.Context, team *domain.Team) error {
	return r.c.update("team_create", func(doc *map[string]*domain.Team) error {
		if *doc == nil {
			*doc = make(map[string]*domain.Team)
		}
		if _, ok := (*doc)[team.ID]; ok {
			return domain.ErrTeamExists
		}
		(*doc)[team.ID] = team.Clone()
		return nil
	})
}

// GetByID получает команду по ID
func (r *TeamRepository) GetByID(_ context.Context, teamID string) (*domain.Team, error) {
	var found *domain.Team
	err := r.c.view("team_get", func(doc map[string]*domain.Team) error {
		t, ok := doc[teamID]
		if !ok {
			return domain.ErrTeamNotFound
		}
		found = normalizeTeam(teamID, t)
		return nil
	})
	return found, err
}

// List возвращает все команды, упорядоченные по времени создания
func (r *TeamRepository) List(_ context.Context) ([]*domain.Team, error) {
	out := make([]*domain.Team, 0)
	err := r.c.view("team_list", func(doc map[string]*domain.Team) error {
		for id, t := range doc {
			out = append(out, normalizeTeam(id, t))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *domain.Team) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

// Modify изменяет команду в рамках одного цикла чтения и записи файла
func (r *TeamRepository) Modify(_ context.Context, teamID string, fn func(*domain.Team) error) (*domain.Team, error) {
	var out *domain.Team
	err := r.c.update("team_modify", func(doc *map[string]*domain.Team) error {
		stored, ok := (*doc)[teamID]
		if !ok {
			return domain.ErrTeamNotFound
		}
		t := normalizeTeam(teamID, stored)
		if err := fn(t); err != nil {
			return err
		}
		(*doc)[teamID] = t.Clone()
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete удаляет команду
func (r *TeamRepository) Delete(_ context.Context, teamID string) error {
	return r.c.update("team_delete", func(doc *map[string]*domain.Team) error {
		if _, ok := (*doc)[teamID]; !ok {
			return domain.ErrTeamNotFound
		}
		delete(*doc, teamID)
		return nil
	})
}

// normalizeTeam восстанавливает ID из ключа и пересчитывает администратора
func normalizeTeam(id string, t *domain.Team) *domain.Team {
	c := t.Clone()
	c.ID = id
	c.SetMembers(c.Members)
	return c
}

// MeetingRepository хранит встречи в meetings.json
type MeetingRepository struct {
	c *collection[[]*domain.Meeting]
}

// Create создает новую встречу
func (r *MeetingRepository) Create(_ context.Context, meeting *domain.Meeting) error {
	return r.c.update("meeting_create", func(doc *[]*domain.Meeting) error {
		for _, m := range *doc {
			if m.ID == meeting.ID {
				return domain.ErrMeetingExists
			}
		}
		*doc = append(*doc, meeting.Clone())
		return nil
	})
}

// GetByID получает встречу по ID
func (r *MeetingRepository) GetByID(_ context.Context, meetingID string) (*domain.Meeting, error) {
	var found *domain.Meeting
	err := r.c.view("meeting_get", func(doc []*domain.Meeting) error {
		for _, m := range doc {
			if m.ID == meetingID {
				found = m.Clone()
				return nil
			}
		}
		return domain.ErrMeetingNotFound
	})
	return found, err
}

// List возвращает все встречи
func (r *MeetingRepository) List(_ context.Context) ([]*domain.Meeting, error) {
	return r.filter("meeting_list", func(*domain.Meeting) bool { return true })
}

// ListByTeam возвращает встречи команды
func (r *MeetingRepository) ListByTeam(_ context.Context, teamID string) ([]*domain.Meeting, error) {
	return r.filter("meeting_list_by_team", func(m *domain.Meeting) bool { return m.TeamID == teamID })
}

func (r *MeetingRepository) filter(method string, keep func(*domain.Meeting) bool) ([]*domain.Meeting, error) {
	out := make([]*domain.Meeting, 0)
	err := r.c.view(method, func(doc []*domain.Meeting) error {
		for _, m := range doc {
			if keep(m) {
				out = append(out, m.Clone())
			}
		}
		return nil
	})
	return out, err
}

// Modify изменяет встречу в рамках одного цикла чтения и записи файла
func (r *MeetingRepository) Modify(_ context.Context, meetingID string, fn func(*domain.Meeting) error) (*domain.Meeting, error) {
	var out *domain.Meeting
	err := r.c.update("meeting_modify", func(doc *[]*domain.Meeting) error {
		for i, stored := range *doc {
			if stored.ID != meetingID {
				continue
			}
			m := stored.Clone()
			if err := fn(m); err != nil {
				return err
			}
			(*doc)[i] = m.Clone()
			out = m
			return nil
		}
		return domain.ErrMeetingNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete удаляет встречу
func (r *MeetingRepository) Delete(_ context.Context, meetingID string) error {
	return r.c.update("meeting_delete", func(doc *[]*domain.Meeting) error {
		n := len(*doc)
		*doc = slices.DeleteFunc(*doc, func(m *domain.Meeting) bool { return m.ID == meetingID })
		if len(*doc) == n {
			return domain.ErrMeetingNotFound
		}
		return nil
	})
}

// VoteRepository хранит голоса в votes.json
type VoteRepository struct {
	c *collection[[]*domain.Vote]
}

// Replace заменяет голос пользователя за встречу
func (r *VoteRepository) Replace(_ context.Context, vote *domain.Vote) error {
	return r.c.update("vote_replace", func(doc *[]*domain.Vote) error {
		*doc = slices.DeleteFunc(*doc, func(v *domain.Vote) bool {
			return v.MeetingID == vote.MeetingID && v.UserID == vote.UserID
		})
		v := *vote
		*doc = append(*doc, &v)
		return nil
	})
}

// ListByMeeting возвращает голоса встречи
func (r *VoteRepository) ListByMeeting(_ context.Context, meetingID string) ([]*domain.Vote, error) {
	out := make([]*domain.Vote, 0)
	err := r.c.view("vote_list", func(doc []*domain.Vote) error {
		for _, v := range doc {
			if v.MeetingID == meetingID {
				c := *v
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}

// DeleteByMeeting удаляет голоса встречи
func (r *VoteRepository) DeleteByMeeting(_ context.Context, meetingID string) error {
	return r.c.update("vote_delete_by_meeting", func(doc *[]*domain.Vote) error {
		*doc = slices.DeleteFunc(*doc, func(v *domain.Vote) bool { return v.MeetingID == meetingID })
		return nil
	})
}

// DeleteByUser удаляет голоса пользователя
func (r *VoteRepository) DeleteByUser(_ context.Context, userID string) error {
	return r.c.update("vote_delete_by_user", func(doc *[]*domain.Vote) error {
		*doc = slices.DeleteFunc(*doc, func(v *domain.Vote) bool { return v.UserID == userID })
		return nil
	})
}
