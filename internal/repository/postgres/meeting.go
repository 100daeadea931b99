package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/team-scheduler/internal/domain"
)

// MeetingRepository реализует repository.MeetingRepository для PostgreSQL
type MeetingRepository struct {
	db *pgxpool.Pool
}

// NewMeetingRepository создает новый экземпляр MeetingRepository
func NewMeetingRepository(db *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `id, title, description, team_id, creator_id, time_slots, scheduled_time,
	voting_start, voting_end, duration, timezone, status, created_at`

// Create создает новую встречу
func (r *MeetingRepository) Create(ctx context.Context, m *domain.Meeting) (err error) {
	defer observe("meeting_create", time.Now(), &err)

	query := `
		INSERT INTO meetings (` + meetingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.Exec(ctx, query,
		m.ID, m.Title, m.Description, m.TeamID, m.CreatorID, timeSlots(m), m.ScheduledTime,
		m.VotingStart, m.VotingEnd, m.Duration, m.Timezone, m.Status, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMeetingExists
		}
		return err
	}
	return nil
}

// GetByID получает встречу по ID
func (r *MeetingRepository) GetByID(ctx context.Context, meetingID string) (_ *domain.Meeting, err error) {
	defer observe("meeting_get", time.Now(), &err)

	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	meeting, err := scanMeeting(r.db.QueryRow(ctx, query, meetingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, err
	}
	return meeting, nil
}

// List возвращает все встречи в порядке создания
func (r *MeetingRepository) List(ctx context.Context) (_ []*domain.Meeting, err error) {
	defer observe("meeting_list", time.Now(), &err)

	return r.query(ctx, `SELECT `+meetingColumns+` FROM meetings ORDER BY created_at, id`)
}

// ListByTeam возвращает встречи команды
func (r *MeetingRepository) ListByTeam(ctx context.Context, teamID string) (_ []*domain.Meeting, err error) {
	defer observe("meeting_list_by_team", time.Now(), &err)

	return r.query(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE team_id = $1 ORDER BY created_at, id`, teamID)
}

func (r *MeetingRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Meeting, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := make([]*domain.Meeting, 0)
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}

	return meetings, rows.Err()
}

// Modify блокирует строку встречи, применяет fn и сохраняет результат в одной транзакции
func (r *MeetingRepository) Modify(ctx context.Context, meetingID string, fn func(*domain.Meeting) error) (_ *domain.Meeting, err error) {
	defer observe("meeting_modify", time.Now(), &err)

	var meeting *domain.Meeting
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1 FOR UPDATE`
		m, err := scanMeeting(tx.QueryRow(ctx, query, meetingID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrMeetingNotFound
			}
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		if err := updateMeeting(ctx, tx, m); err != nil {
			return err
		}
		meeting = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

func updateMeeting(ctx context.Context, db execer, m *domain.Meeting) error {
	query := `
		UPDATE meetings
		SET title = $2, description = $3, team_id = $4, creator_id = $5, time_slots = $6,
		    scheduled_time = $7, voting_start = $8, voting_end = $9, duration = $10,
		    timezone = $11, status = $12
		WHERE id = $1
	`

	result, err := db.Exec(ctx, query,
		m.ID, m.Title, m.Description, m.TeamID, m.CreatorID, timeSlots(m),
		m.ScheduledTime, m.VotingStart, m.VotingEnd, m.Duration, m.Timezone, m.Status,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

// Delete удаляет встречу
func (r *MeetingRepository) Delete(ctx context.Context, meetingID string) (err error) {
	defer observe("meeting_delete", time.Now(), &err)

	result, err := r.db.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, meetingID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func timeSlots(m *domain.Meeting) []time.Time {
	if m.TimeSlots == nil {
		return []time.Time{}
	}
	return m.TimeSlots
}

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var m domain.Meeting
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.TeamID,
		&m.CreatorID,
		&m.TimeSlots,
		&m.ScheduledTime,
		&m.VotingStart,
		&m.VotingEnd,
		&m.Duration,
		&m.Timezone,
		&m.Status,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	for i := range m.TimeSlots {
		m.TimeSlots[i] = m.TimeSlots[i].UTC()
	}
	if m.TimeSlots == nil {
		m.TimeSlots = []time.Time{}
	}
	m.ScheduledTime = utcPtr(m.ScheduledTime)
	m.VotingStart = utcPtr(m.VotingStart)
	m.VotingEnd = utcPtr(m.VotingEnd)
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}
