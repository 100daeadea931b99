package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/team-scheduler/internal/domain"
)

// MemberRepository реализует repository.MemberRepository для PostgreSQL
type MemberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository создает новый экземпляр MemberRepository
func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, name, email, timezone, role, status, availability, avatar, password_hash, created_at`

// Create сохраняет нового участника
func (r *MemberRepository) Create(ctx context.Context, member *domain.Member) (err error) {
	defer observe("member_create", time.Now(), &err)

	availability, err := json.Marshal(member.Availability)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}

	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Exec(ctx, query,
		member.ID, member.Name, member.Email, member.Timezone, member.Role, member.Status,
		availability, member.Avatar, member.PasswordHash, member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMemberExists
		}
		return err
	}
	return nil
}

// GetByID получает участника по ID
func (r *MemberRepository) GetByID(ctx context.Context, memberID string) (_ *domain.Member, err error) {
	defer observe("member_get", time.Now(), &err)

	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member, err := scanMember(r.db.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// List возвращает всех участников в порядке создания
func (r *MemberRepository) List(ctx context.Context) (_ []*domain.Member, err error) {
	defer observe("member_list", time.Now(), &err)

	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.Member, 0)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// Modify блокирует строку участника, применяет fn и сохраняет результат в одной транзакции
func (r *MemberRepository) Modify(ctx context.Context, memberID string, fn func(*domain.Member) error) (_ *domain.Member, err error) {
	defer observe("member_modify", time.Now(), &err)

	var member *domain.Member
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`
		m, err := scanMember(tx.QueryRow(ctx, query, memberID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrMemberNotFound
			}
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		if err := updateMember(ctx, tx, m); err != nil {
			return err
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func updateMember(ctx context.Context, db execer, member *domain.Member) error {
	availability, err := json.Marshal(member.Availability)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}

	query := `
		UPDATE members
		SET name = $2, email = $3, timezone = $4, role = $5, status = $6,
		    availability = $7, avatar = $8, password_hash = $9
		WHERE id = $1
	`

	result, err := db.Exec(ctx, query,
		member.ID, member.Name, member.Email, member.Timezone, member.Role, member.Status,
		availability, member.Avatar, member.PasswordHash,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// Delete удаляет участника
func (r *MemberRepository) Delete(ctx context.Context, memberID string) (err error) {
	defer observe("member_delete", time.Now(), &err)

	result, err := r.db.Exec(ctx, `DELETE FROM members WHERE id = $1`, memberID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var (
		member       domain.Member
		availability []byte
	)
	err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.Timezone,
		&member.Role,
		&member.Status,
		&availability,
		&member.Avatar,
		&member.PasswordHash,
		&member.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(availability, &member.Availability); err != nil {
		return nil, fmt.Errorf("decode availability of %s: %w", member.ID, err)
	}
	member.CreatedAt = member.CreatedAt.UTC()
	return &member, nil
}
