package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/repository"
)

// MemberInput carries the fields accepted when a member is created.
type MemberInput struct {
	Name         string
	Email        string
	Timezone     string
	Role         string
	Status       string
	Avatar       string
	Availability *domain.Availability
}

// MemberUpdate carries optional member changes. Nil fields are left untouched.
type MemberUpdate struct {
	Name     *string
	Email    *string
	Timezone *string
	Role     *string
	Status   *string
	Avatar   *string
}

// MemberService handles business logic for members
type MemberService struct {
	store *repository.Store
	now   func() time.Time
}

// NewMemberService creates a new MemberService
func NewMemberService(store *repository.Store) *MemberService {
	return &MemberService{
		store: store,
		now:   time.Now,
	}
}

// Create validates and stores a new member without credentials
func (s *MemberService) Create(ctx context.Context, in MemberInput) (*domain.Member, error) {
	return s.create(ctx, in, "")
}

func (s *MemberService) create(ctx context.Context, in MemberInput, passwordHash string) (*domain.Member, error) {
	name, err := requireText("name", in.Name, maxNameLength)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	zone, err := normalizeZone(in.Timezone, domain.DefaultTimezone)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, "", name, email); err != nil {
		return nil, err
	}

	member := &domain.Member{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Timezone:     zone,
		Role:         defaultString(in.Role, domain.DefaultRole),
		Status:       defaultString(in.Status, domain.DefaultStatus),
		Avatar:       strings.TrimSpace(in.Avatar),
		Teams:        []string{},
		CreatedAt:    s.now().UTC(),
		PasswordHash: passwordHash,
	}
	if in.Availability != nil {
		member.Availability = *in.Availability
	}

	if err := s.store.Members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// checkUnique rejects a name or email already used by a member other than selfID.
// Names compare case-insensitively.
func (s *MemberService) checkUnique(ctx context.Context, selfID, name, email string) error {
	members, err := s.store.Members.List(ctx)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.ID == selfID {
			continue
		}
		if name != "" && strings.EqualFold(m.Name, name) {
			return domain.ErrMemberNameTaken
		}
		if email != "" && strings.EqualFold(m.Email, email) {
			return domain.ErrEmailTaken
		}
	}
	return nil
}

// Get retrieves a member with the list of teams they belong to
func (s *MemberService) Get(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.store.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	teams, err := s.store.Teams.List(ctx)
	if err != nil {
		return nil, err
	}
	attachTeams(teams, member)
	return member, nil
}

// List returns all members with derived team lists
func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.store.Members.List(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.store.Teams.List(ctx)
	if err != nil {
		return nil, err
	}
	attachTeams(teams, members...)
	return members, nil
}

// Update applies the given changes, re-checking name and email uniqueness
func (s *MemberService) Update(ctx context.Context, memberID string, upd MemberUpdate) (*domain.Member, error) {
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	var (
		name, email, zone string
		err               error
	)
	if upd.Name != nil {
		if name, err = requireText("name", *upd.Name, maxNameLength); err != nil {
			return nil, err
		}
	}
	if upd.Email != nil {
		if email, err = normalizeEmail(*upd.Email); err != nil {
			return nil, err
		}
	}
	if upd.Timezone != nil {
		if zone, err = normalizeZone(*upd.Timezone, domain.DefaultTimezone); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, memberID, name, email); err != nil {
		return nil, err
	}

	_, err = s.store.Members.Modify(ctx, memberID, func(m *domain.Member) error {
		if upd.Name != nil {
			m.Name = name
		}
		if upd.Email != nil {
			m.Email = email
		}
		if upd.Timezone != nil {
			m.Timezone = zone
		}
		if upd.Role != nil {
			m.Role = defaultString(*upd.Role, domain.DefaultRole)
		}
		if upd.Status != nil {
			m.Status = defaultString(*upd.Status, domain.DefaultStatus)
		}
		if upd.Avatar != nil {
			m.Avatar = strings.TrimSpace(*upd.Avatar)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, memberID)
}

// Delete removes a member, drops them from every team and deletes their votes.
// Teams whose first member leaves get the next member as admin.
func (s *MemberService) Delete(ctx context.Context, memberID string) error {
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		return err
	}

	teams, err := s.store.Teams.List(ctx)
	if err != nil {
		return err
	}
	for _, team := range teams {
		if !team.HasMember(memberID) {
			continue
		}
		_, err := s.store.Teams.Modify(ctx, team.ID, func(t *domain.Team) error {
			t.SetMembers(t.WithoutMember(memberID))
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrTeamNotFound) {
			return err
		}
	}

	if err := s.store.Votes.DeleteByUser(ctx, memberID); err != nil {
		return err
	}
	return s.store.Members.Delete(ctx, memberID)
}

// Availability returns the member's weekly grid
func (s *MemberService) Availability(ctx context.Context, memberID string) (domain.Availability, error) {
	member, err := s.store.Members.GetByID(ctx, memberID)
	if err != nil {
		return domain.Availability{}, err
	}
	return member.Availability, nil
}

// SetAvailability replaces the member's grid entirely
func (s *MemberService) SetAvailability(ctx context.Context, memberID string, grid domain.Availability) (domain.Availability, error) {
	member, err := s.store.Members.Modify(ctx, memberID, func(m *domain.Member) error {
		m.Availability = grid
		return nil
	})
	if err != nil {
		return domain.Availability{}, err
	}
	return member.Availability, nil
}

// ImportLegacyAvailability replaces the grid with a converted 24-flag vector
func (s *MemberService) ImportLegacyAvailability(ctx context.Context, memberID string, flags []int) (domain.Availability, error) {
	grid, err := domain.ImportLegacyAvailability(flags)
	if err != nil {
		return domain.Availability{}, err
	}
	return s.SetAvailability(ctx, memberID, grid)
}

// Teams returns the teams the member belongs to
func (s *MemberService) Teams(ctx context.Context, memberID string) ([]*domain.Team, error) {
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	teams, err := s.store.Teams.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Team, 0)
	for _, team := range teams {
		if team.HasMember(memberID) {
			out = append(out, team)
		}
	}
	return out, nil
}

// attachTeams fills Member.Teams by scanning team membership
func attachTeams(teams []*domain.Team, members ...*domain.Member) {
	for _, m := range members {
		m.Teams = []string{}
		for _, t := range teams {
			if t.HasMember(m.ID) {
				m.Teams = append(m.Teams, t.ID)
			}
		}
	}
}

func defaultString(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}
