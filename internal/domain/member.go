package domain

import "time"

// Значения по умолчанию для участника
const (
	DefaultRole     = "member"
	DefaultStatus   = "offline"
	DefaultTimezone = "UTC"
)

// Member представляет пользователя системы (участника команд)
type Member struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email,omitempty"`
	Timezone     string       `json:"timezone"`
	Role         string       `json:"role"`
	Status       string       `json:"status"`
	Availability Availability `json:"availability"`
	Teams        []string     `json:"teams"` // Вычисляется по списку команд при чтении
	Avatar       string       `json:"avatar,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	PasswordHash string       `json:"-"`
}

// Clone возвращает глубокую копию участника
func (m *Member) Clone() *Member {
	c := *m
	c.Teams = append([]string(nil), m.Teams...)
	return &c
}
