package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/service"
)

const password = "Str0ngPass"

func TestRegister(t *testing.T) {
	f := newFixture(t)

	member, token, err := f.auth.Register(f.ctx, service.RegisterInput{
		Name: "Alice Smith", Email: "Alice@Example.com", Password: password, Timezone: "Europe/Berlin",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", member.Email)
	assert.Equal(t, "Europe/Berlin", member.Timezone)
	assert.Equal(t, domain.DefaultRole, member.Role)
	assert.Equal(t, domain.DefaultStatus, member.Status)
	assert.Zero(t, member.Availability.Count())
	assert.Contains(t, member.Avatar, "https://ui-avatars.com/api/?")
	assert.Contains(t, member.Avatar, "name=AS")
	assert.Equal(t, service.TokenType, token.TokenType)

	data, err := json.Marshal(member)
	require.NoError(t, err)
	assert.NotContains(t, string(data), member.PasswordHash)
	assert.NotContains(t, string(data), "password")

	claims, err := f.auth.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, member.ID, claims.UserID)
	assert.Equal(t, member.ID, claims.Subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	first, _, err := f.auth.Register(f.ctx, service.RegisterInput{Name: "alice", Email: "a@example.com", Password: password})
	require.NoError(t, err)

	_, _, err = f.auth.Register(f.ctx, service.RegisterInput{Name: "alice2", Email: "A@example.com", Password: "An0therPass"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, _, err = f.auth.Register(f.ctx, service.RegisterInput{Name: "ALICE", Email: "b@example.com", Password: password})
	assert.ErrorIs(t, err, domain.ErrMemberNameTaken)

	members, err := f.members.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, first.ID, members[0].ID)
	assert.Equal(t, "alice", members[0].Name)

	_, err = f.auth.Login(f.ctx, service.LoginInput{Email: "a@example.com", Password: password})
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]service.RegisterInput{
		"missing email":    {Name: "a", Password: password},
		"bad email":        {Name: "a", Email: "not-an-email", Password: password},
		"short password":   {Name: "a", Email: "a@example.com", Password: "Ab1"},
		"no digit":         {Name: "a", Email: "a@example.com", Password: "NoDigitsHere"},
		"no upper":         {Name: "a", Email: "a@example.com", Password: "lower1234"},
		"missing name":     {Email: "a@example.com", Password: password},
		"unknown timezone": {Name: "a", Email: "a@example.com", Password: password, Timezone: "Moon/Base"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.auth.Register(f.ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	member, _, err := f.auth.Register(f.ctx, service.RegisterInput{Name: "alice", Email: "a@example.com", Password: password})
	require.NoError(t, err)
	f.member(t, "nopass", "UTC")

	t.Run("by email", func(t *testing.T) {
		token, err := f.auth.Login(f.ctx, service.LoginInput{Email: "A@example.com", Password: password})
		require.NoError(t, err)
		v, err := f.auth.Verify(token.AccessToken)
		require.NoError(t, err)
		assert.True(t, v.Valid)
		assert.Equal(t, member.ID, v.UserID)
		assert.Equal(t, f.now.Add(time.Hour), v.ExpiresAt)
	})

	t.Run("by name", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, service.LoginInput{Name: "alice", Password: password})
		assert.NoError(t, err)
	})

	t.Run("both identifiers", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, service.LoginInput{Name: "alice", Email: "a@example.com", Password: password})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, service.LoginInput{Name: "alice", Password: "Wr0ngPass"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, service.LoginInput{Name: "nobody", Password: password})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("member without credentials", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, service.LoginInput{Name: "nopass", Password: password})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestTokenExpiry(t *testing.T) {
	f := newFixture(t)
	now := f.now
	auth := service.NewAuthService(f.members, "test-secret", time.Second, bcrypt.MinCost).
		WithClock(func() time.Time { return now })

	token, err := auth.IssueToken("member-1")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "member-1", claims.UserID)

	now = now.Add(2 * time.Second)
	_, err = auth.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenSignature(t *testing.T) {
	f := newFixture(t)
	other := service.NewAuthService(f.members, "other-secret", time.Hour, bcrypt.MinCost)

	token, err := other.IssueToken("member-1")
	require.NoError(t, err)

	_, err = f.auth.ValidateToken(token.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.auth.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	member, _, err := f.auth.Register(f.ctx, service.RegisterInput{Name: "alice", Email: "a@example.com", Password: password})
	require.NoError(t, err)

	zone := "singapore"
	updated, err := f.auth.UpdateProfile(f.ctx, member.ID, service.ProfileUpdate{Timezone: &zone})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Singapore", updated.Timezone)
	assert.Equal(t, "alice", updated.Name)

	// credentials survive a profile update
	_, err = f.auth.Login(f.ctx, service.LoginInput{Name: "alice", Password: password})
	assert.NoError(t, err)
}
