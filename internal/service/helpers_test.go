package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/repository"
	"github.com/aidar/team-scheduler/internal/repository/filestore"
	"github.com/aidar/team-scheduler/internal/repository/memory"
	"github.com/aidar/team-scheduler/internal/service"
)

// fixture собирает сервисы поверх выбранного хранилища
type fixture struct {
	store    *repository.Store
	members  *service.MemberService
	teams    *service.TeamService
	meetings *service.MeetingService
	schedule *service.ScheduleService
	auth     *service.AuthService
	now      time.Time
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, memory.NewStore())
}

// newFileFixture runs the services over JSON files in a temp dir
func newFileFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	return newFixtureWith(t, store)
}

func newFixtureWith(t *testing.T, store *repository.Store) *fixture {
	t.Helper()
	members := service.NewMemberService(store)
	f := &fixture{
		store:    store,
		members:  members,
		teams:    service.NewTeamService(store),
		meetings: service.NewMeetingService(store),
		schedule: service.NewScheduleService(store),
		auth:     service.NewAuthService(members, "test-secret", time.Hour, bcrypt.MinCost),
		now:      time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		ctx:      context.Background(),
	}
	f.meetings.WithClock(func() time.Time { return f.now })
	f.auth.WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) member(t *testing.T, name, zone string) *domain.Member {
	t.Helper()
	m, err := f.members.Create(f.ctx, service.MemberInput{Name: name, Timezone: zone})
	require.NoError(t, err)
	return m
}

func (f *fixture) team(t *testing.T, creator *domain.Member, name string, others ...*domain.Member) *domain.Team {
	t.Helper()
	ids := make([]string, 0, len(others))
	for _, o := range others {
		ids = append(ids, o.ID)
	}
	team, err := f.teams.Create(f.ctx, creator.ID, service.TeamInput{Name: name, Members: ids})
	require.NoError(t, err)
	return team
}
