package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/repository"
)

// TeamInput carries the fields accepted when a team is created
type TeamInput struct {
	Name        string
	Description string
	Timezone    string
	Members     []string
}

// TeamUpdate carries optional metadata changes. Nil fields are left untouched.
type TeamUpdate struct {
	Name        *string
	Description *string
	Timezone    *string
}

// TeamService handles business logic for teams. Every mutation except Create
// is restricted to the team admin, who is always the first member.
type TeamService struct {
	store *repository.Store
	now   func() time.Time
}

// NewTeamService creates a new TeamService
func NewTeamService(store *repository.Store) *TeamService {
	return &TeamService{
		store: store,
		now:   time.Now,
	}
}

// Create makes a new team with the creator as its first member and admin
func (s *TeamService) Create(ctx context.Context, creatorID string, in TeamInput) (*domain.Team, error) {
	name, err := requireText("name", in.Name, maxNameLength)
	if err != nil {
		return nil, err
	}
	zone, err := normalizeZone(in.Timezone, "")
	if err != nil {
		return nil, err
	}
	if err := s.checkUniqueName(ctx, "", name); err != nil {
		return nil, err
	}

	// Creator goes first so that they become admin
	if _, err := s.store.Members.GetByID(ctx, creatorID); err != nil {
		return nil, err
	}
	members := []string{creatorID}
	for _, id := range in.Members {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(members, id) {
			continue
		}
		if _, err := s.store.Members.GetByID(ctx, id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}

	team := &domain.Team{
		ID:          slugify(name) + "-" + uuid.NewString()[:8],
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Timezone:    zone,
		CreatedAt:   s.now().UTC(),
	}
	team.SetMembers(members)

	if err := s.store.Teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// checkUniqueName rejects a team name already used by another team, ignoring case
func (s *TeamService) checkUniqueName(ctx context.Context, selfID, name string) error {
	teams, err := s.store.Teams.List(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		if t.ID != selfID && strings.EqualFold(t.Name, name) {
			return domain.ErrTeamExists
		}
	}
	return nil
}

// Get retrieves a team
func (s *TeamService) Get(ctx context.Context, teamID string) (*domain.Team, error) {
	return s.store.Teams.GetByID(ctx, teamID)
}

// List returns all teams
func (s *TeamService) List(ctx context.Context) ([]*domain.Team, error) {
	return s.store.Teams.List(ctx)
}

// Members returns the team's member records in team order. Ids that no longer
// resolve to a member are skipped.
func (s *TeamService) Members(ctx context.Context, teamID string) ([]*domain.Member, error) {
	team, err := s.store.Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Member, 0, len(team.Members))
	for _, id := range team.Members {
		m, err := s.store.Members.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Update changes team metadata
func (s *TeamService) Update(ctx context.Context, actorID, teamID string, upd TeamUpdate) (*domain.Team, error) {
	team, err := s.adminTeam(ctx, actorID, teamID)
	if err != nil {
		return nil, err
	}

	var name, zone string
	if upd.Name != nil {
		if name, err = requireText("name", *upd.Name, maxNameLength); err != nil {
			return nil, err
		}
		if err := s.checkUniqueName(ctx, team.ID, name); err != nil {
			return nil, err
		}
	}
	if upd.Timezone != nil {
		if zone, err = normalizeZone(*upd.Timezone, ""); err != nil {
			return nil, err
		}
	}

	return s.modifyAsAdmin(ctx, actorID, teamID, func(t *domain.Team) error {
		if upd.Name != nil {
			t.Name = name
		}
		if upd.Description != nil {
			t.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.Timezone != nil {
			t.Timezone = zone
		}
		return nil
	})
}

// AddMember appends an existing member to the team
func (s *TeamService) AddMember(ctx context.Context, actorID, teamID, memberID string) (*domain.Team, error) {
	if _, err := s.adminTeam(ctx, actorID, teamID); err != nil {
		return nil, err
	}
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	return s.modifyAsAdmin(ctx, actorID, teamID, func(t *domain.Team) error {
		if t.HasMember(memberID) {
			return domain.ErrAlreadyTeamMember
		}
		t.SetMembers(append(t.Members, memberID))
		return nil
	})
}

// RemoveMember drops a member from the team. The admin may only leave once
// they are the last member.
func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, memberID string) (*domain.Team, error) {
	return s.modifyAsAdmin(ctx, actorID, teamID, func(t *domain.Team) error {
		if !t.HasMember(memberID) {
			return domain.ErrNotTeamMember
		}
		if t.IsAdmin(memberID) && t.MemberCount() > 1 {
			return domain.ErrAdminRemoval
		}
		t.SetMembers(t.WithoutMember(memberID))
		return nil
	})
}

// TransferOwnership makes another team member the admin by moving them to the front
func (s *TeamService) TransferOwnership(ctx context.Context, actorID, teamID, memberID string) (*domain.Team, error) {
	return s.modifyAsAdmin(ctx, actorID, teamID, func(t *domain.Team) error {
		if !t.HasMember(memberID) {
			return domain.ErrNotTeamMember
		}
		t.SetMembers(append([]string{memberID}, t.WithoutMember(memberID)...))
		return nil
	})
}

// Delete removes the team together with its meetings and their votes
func (s *TeamService) Delete(ctx context.Context, actorID, teamID string) error {
	team, err := s.adminTeam(ctx, actorID, teamID)
	if err != nil {
		return err
	}

	meetings, err := s.store.Meetings.ListByTeam(ctx, team.ID)
	if err != nil {
		return err
	}
	for _, m := range meetings {
		if err := s.store.Votes.DeleteByMeeting(ctx, m.ID); err != nil {
			return err
		}
		if err := s.store.Meetings.Delete(ctx, m.ID); err != nil {
			return err
		}
	}

	return s.store.Teams.Delete(ctx, team.ID)
}

// adminTeam loads the team and checks that actorID is its admin
func (s *TeamService) adminTeam(ctx context.Context, actorID, teamID string) (*domain.Team, error) {
	team, err := s.store.Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsAdmin(actorID) {
		return nil, domain.ErrNotTeamAdmin
	}
	return team, nil
}

// modifyAsAdmin applies fn to the stored team while holding the team lock.
// The admin check is repeated under the lock since membership may have
// changed after any earlier read.
func (s *TeamService) modifyAsAdmin(ctx context.Context, actorID, teamID string, fn func(*domain.Team) error) (*domain.Team, error) {
	return s.store.Teams.Modify(ctx, teamID, func(t *domain.Team) error {
		if !t.IsAdmin(actorID) {
			return domain.ErrNotTeamAdmin
		}
		return fn(t)
	})
}
