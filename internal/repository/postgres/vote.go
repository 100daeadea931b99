package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/team-scheduler/internal/domain"
)

// VoteRepository реализует repository.VoteRepository для PostgreSQL
type VoteRepository struct {
	db *pgxpool.Pool
}

// NewVoteRepository создает новый экземпляр VoteRepository
func NewVoteRepository(db *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{db: db}
}

// Replace заменяет голос пользователя за встречу в одной транзакции.
// Advisory-блокировка по паре (встреча, пользователь) сериализует первые
// голоса, когда удалять еще нечего и блокировка строки не помогает.
func (r *VoteRepository) Replace(ctx context.Context, vote *domain.Vote) (err error) {
	defer observe("vote_replace", time.Now(), &err)

	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || '/' || $2))`, vote.MeetingID, vote.UserID); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `DELETE FROM votes WHERE meeting_id = $1 AND user_id = $2`, vote.MeetingID, vote.UserID)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO votes (id, meeting_id, user_id, time_slot, preference, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.Exec(ctx, query, vote.ID, vote.MeetingID, vote.UserID, vote.TimeSlot, string(vote.Preference), vote.CreatedAt)
		return err
	})
}

// ListByMeeting возвращает голоса встречи в порядке подачи
func (r *VoteRepository) ListByMeeting(ctx context.Context, meetingID string) (_ []*domain.Vote, err error) {
	defer observe("vote_list", time.Now(), &err)

	query := `
		SELECT id, meeting_id, user_id, time_slot, preference, created_at
		FROM votes
		WHERE meeting_id = $1
		ORDER BY seq
	`

	rows, err := r.db.Query(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make([]*domain.Vote, 0)
	for rows.Next() {
		var (
			v          domain.Vote
			preference string
		)
		if err := rows.Scan(&v.ID, &v.MeetingID, &v.UserID, &v.TimeSlot, &preference, &v.CreatedAt); err != nil {
			return nil, err
		}
		v.Preference = domain.Preference(preference)
		v.CreatedAt = v.CreatedAt.UTC()
		votes = append(votes, &v)
	}

	return votes, rows.Err()
}

// DeleteByMeeting удаляет голоса встречи
func (r *VoteRepository) DeleteByMeeting(ctx context.Context, meetingID string) (err error) {
	defer observe("vote_delete_by_meeting", time.Now(), &err)

	_, err = r.db.Exec(ctx, `DELETE FROM votes WHERE meeting_id = $1`, meetingID)
	return err
}

// DeleteByUser удаляет голоса пользователя
func (r *VoteRepository) DeleteByUser(ctx context.Context, userID string) (err error) {
	defer observe("vote_delete_by_user", time.Now(), &err)

	_, err = r.db.Exec(ctx, `DELETE FROM votes WHERE user_id = $1`, userID)
	return err
}
