package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// Team представляет команду с упорядоченным списком участников.
// Администратором всегда считается первый участник списка.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	Members     []string  `json:"members"`
	Admin       string    `json:"admin"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SetMembers заменяет список участников и пересчитывает администратора
func (t *Team) SetMembers(members []string) {
	t.Members = members
	if t.Members == nil {
		t.Members = []string{}
	}
	t.Admin = ""
	if len(t.Members) > 0 {
		t.Admin = t.Members[0]
	}
}

// HasMember проверяет, состоит ли участник в команде
func (t *Team) HasMember(memberID string) bool {
	return slices.Contains(t.Members, memberID)
}

// IsAdmin проверяет, является ли участник администратором команды
func (t *Team) IsAdmin(memberID string) bool {
	return t.Admin != "" && t.Admin == memberID
}

// MemberCount возвращает количество участников
func (t *Team) MemberCount() int {
	return len(t.Members)
}

// WithoutMember возвращает список участников без указанного
func (t *Team) WithoutMember(memberID string) []string {
	out := make([]string, 0, len(t.Members))
	for _, id := range t.Members {
		if id != memberID {
			out = append(out, id)
		}
	}
	return out
}

// Clone возвращает глубокую копию команды
func (t *Team) Clone() *Team {
	c := *t
	c.Members = append([]string{}, t.Members...)
	return &c
}

// MarshalJSON добавляет вычисляемое поле memberCount и отдает admin=null для пустой команды
func (t Team) MarshalJSON() ([]byte, error) {
	type alias Team
	var admin *string
	if t.Admin != "" {
		admin = &t.Admin
	}
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return json.Marshal(struct {
		alias
		Members     []string `json:"members"`
		Admin       *string  `json:"admin"`
		MemberCount int      `json:"memberCount"`
	}{
		alias:       alias(t),
		Members:     members,
		Admin:       admin,
		MemberCount: len(members),
	})
}
