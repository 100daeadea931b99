package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/team-scheduler/internal/domain"
)

func TestTeam_SetMembersRecomputesAdmin(t *testing.T) {
	team := &domain.Team{ID: "core-1a2b3c4d", Name: "Core"}

	team.SetMembers([]string{"alice", "bob"})
	assert.Equal(t, "alice", team.Admin)
	assert.True(t, team.IsAdmin("alice"))
	assert.False(t, team.IsAdmin("bob"))

	team.SetMembers(team.WithoutMember("alice"))
	assert.Equal(t, "bob", team.Admin)
	assert.Equal(t, 1, team.MemberCount())

	team.SetMembers(team.WithoutMember("bob"))
	assert.Empty(t, team.Admin)
	assert.False(t, team.IsAdmin(""))
	assert.NotNil(t, team.Members)
}

func TestTeam_MarshalJSON(t *testing.T) {
	team := &domain.Team{ID: "core-1a2b3c4d", Name: "Core"}
	team.SetMembers([]string{"alice", "bob"})

	data, err := json.Marshal(team)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "alice", out["admin"])
	assert.Equal(t, float64(2), out["memberCount"])

	team.SetMembers(nil)
	data, err = json.Marshal(team)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out["admin"])
	assert.Equal(t, float64(0), out["memberCount"])
	assert.Equal(t, []any{}, out["members"])
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, domain.ErrMemberNotFound, domain.ErrNotFound)
	assert.ErrorIs(t, domain.ErrTeamExists, domain.ErrConflict)
	assert.ErrorIs(t, domain.ErrNotTeamAdmin, domain.ErrForbidden)
	assert.ErrorIs(t, domain.ErrInvalidToken, domain.ErrUnauthorized)
	assert.ErrorIs(t, domain.Validationf("bad %s", "input"), domain.ErrValidation)

	assert.Equal(t, domain.CodeNotFound, domain.MapErrorToCode(domain.ErrMeetingNotFound))
	assert.Equal(t, domain.CodeForbidden, domain.MapErrorToCode(domain.ErrVoterNotInTeam))
	assert.Equal(t, domain.CodeInternal, domain.MapErrorToCode(assert.AnError))
	assert.Equal(t, "team not found", domain.ErrTeamNotFound.Error())
}
