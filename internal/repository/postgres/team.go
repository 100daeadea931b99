package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/team-scheduler/internal/domain"
)

// TeamRepository реализует repository.TeamRepository для PostgreSQL
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `id, name, description, timezone, members, created_at`

// Create создает новую команду
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) (err error) {
	defer observe("team_create", time.Now(), &err)

	query := `
		INSERT INTO teams (` + teamColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.Exec(ctx, query, team.ID, team.Name, team.Description, team.Timezone, members(team), team.CreatedAt)
	if err != nil {
		// Check for unique constraint violation (team already exists)
		if isUniqueViolation(err) {
			return domain.ErrTeamExists
		}
		return err
	}

	return nil
}

// GetByID получает команду со всеми участниками
func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (_ *domain.Team, err error) {
	defer observe("team_get", time.Now(), &err)

	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.db.QueryRow(ctx, query, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// List возвращает все команды в порядке создания
func (r *TeamRepository) List(ctx context.Context) (_ []*domain.Team, err error) {
	defer observe("team_list", time.Now(), &err)

	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*domain.Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// Modify блокирует строку команды, применяет fn и сохраняет результат в одной транзакции
func (r *TeamRepository) Modify(ctx context.Context, teamID string, fn func(*domain.Team) error) (_ *domain.Team, err error) {
	defer observe("team_modify", time.Now(), &err)

	var team *domain.Team
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1 FOR UPDATE`
		t, err := scanTeam(tx.QueryRow(ctx, query, teamID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTeamNotFound
			}
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := updateTeam(ctx, tx, t); err != nil {
			return err
		}
		team = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func updateTeam(ctx context.Context, db execer, team *domain.Team) error {
	query := `
		UPDATE teams
		SET name = $2, description = $3, timezone = $4, members = $5
		WHERE id = $1
	`

	result, err := db.Exec(ctx, query, team.ID, team.Name, team.Description, team.Timezone, members(team))
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

// Delete удаляет команду
func (r *TeamRepository) Delete(ctx context.Context, teamID string) (err error) {
	defer observe("team_delete", time.Now(), &err)

	result, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func members(team *domain.Team) []string {
	if team.Members == nil {
		return []string{}
	}
	return team.Members
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var (
		team    domain.Team
		members []string
	)
	if err := row.Scan(&team.ID, &team.Name, &team.Description, &team.Timezone, &members, &team.CreatedAt); err != nil {
		return nil, err
	}
	team.CreatedAt = team.CreatedAt.UTC()
	team.SetMembers(members)
	return &team, nil
}
