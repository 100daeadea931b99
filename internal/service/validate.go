package service

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/tzconv"
)

// Field length limits.
const (
	maxNameLength  = 100
	maxTitleLength = 200
	minPassword    = 8
)

// requireText trims value and checks it is present and no longer than max runes.
func requireText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.Validationf("%s is required", field)
	}
	if len([]rune(value)) > max {
		return "", domain.Validationf("%s must be at most %d characters", field, max)
	}
	return value, nil
}

// normalizeEmail lowercases and validates an optional address. Empty stays empty.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", domain.Validationf("invalid email format")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPassword {
		return domain.Validationf("password must be at least %d characters long", minPassword)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return domain.Validationf("password must contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}

// normalizeZone validates a zone name, substituting def when it is blank.
// An empty def makes the zone optional.
func normalizeZone(zone, def string) (string, error) {
	zone = tzconv.NormalizeZone(zone)
	if zone == "" {
		if def == "" {
			return "", nil
		}
		zone = def
	}
	loc, err := tzconv.LoadZone(zone)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// slugify lowercases letters and digits and turns everything else into dashes.
func slugify(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "team"
	}
	return slug
}
