package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aidar/team-scheduler/internal/domain"
)

// TokenType is the scheme returned alongside access tokens
const TokenType = "bearer"

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Token is an issued access token
type Token struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// Verification describes a checked token
type Verification struct {
	Valid     bool      `json:"valid"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterInput carries registration fields
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Timezone string
}

// LoginInput identifies a member by exactly one of Email or Name
type LoginInput struct {
	Email    string
	Name     string
	Password string
}

// ProfileUpdate carries the fields a member may change on their own profile
type ProfileUpdate struct {
	Name     *string
	Timezone *string
}

// AuthService handles registration, login and JWT operations
type AuthService struct {
	members    *MemberService
	jwtSecret  string
	jwtExpiry  time.Duration
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(members *MemberService, jwtSecret string, jwtExpiry time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		members:    members,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates a member with credentials and returns them with a fresh token
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Member, *Token, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, nil, err
	}
	if email == "" {
		return nil, nil, domain.Validationf("email is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member, err := s.members.create(ctx, MemberInput{
		Name:     in.Name,
		Email:    email,
		Timezone: in.Timezone,
		Avatar:   defaultAvatar(strings.TrimSpace(in.Name)),
	}, string(hash))
	if err != nil {
		return nil, nil, err
	}

	token, err := s.IssueToken(member.ID)
	if err != nil {
		return nil, nil, err
	}
	return member, token, nil
}

// Login checks credentials and issues a token
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Token, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if (email == "") == (name == "") {
		return nil, domain.Validationf("provide exactly one of 'email' or 'name'")
	}
	if in.Password == "" {
		return nil, domain.Validationf("password is required")
	}

	members, err := s.members.store.Members.List(ctx)
	if err != nil {
		return nil, err
	}

	var found *domain.Member
	for _, m := range members {
		if (email != "" && strings.EqualFold(m.Email, email)) || (name != "" && strings.EqualFold(m.Name, name)) {
			found = m
			break
		}
	}
	// Members created without credentials cannot log in
	if found == nil || found.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	return s.IssueToken(found.ID)
}

// IssueToken generates a signed JWT for a member
func (s *AuthService) IssueToken(userID string) (*Token, error) {
	now := s.now()

	// Create claims
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	// Create token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Sign token
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{AccessToken: tokenString, TokenType: TokenType}, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// Verify validates a token and reports its owner and expiry
func (s *AuthService) Verify(tokenString string) (*Verification, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &Verification{
		Valid:     true,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, nil
}

// Profile returns the authenticated member
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.Member, error) {
	return s.members.Get(ctx, userID)
}

// UpdateProfile changes the member's own name or timezone
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.Member, error) {
	return s.members.Update(ctx, userID, MemberUpdate{
		Name:     upd.Name,
		Timezone: upd.Timezone,
	})
}

// defaultAvatar builds an initials avatar URL whose background colour is derived from the name
func defaultAvatar(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		initials = append(initials, []rune(strings.ToUpper(word))[0])
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		initials = []rune{'U'}
	}

	sum := md5.Sum([]byte(name))
	color := hex.EncodeToString(sum[:])[:6]

	q := url.Values{}
	q.Set("name", string(initials))
	q.Set("background", color)
	q.Set("color", "fff")
	q.Set("size", "128")
	q.Set("bold", "true")
	return "https://ui-avatars.com/api/?" + q.Encode()
}
