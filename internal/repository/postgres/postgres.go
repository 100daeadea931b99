package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/aidar/team-scheduler/internal/metrics"
	"github.com/aidar/team-scheduler/internal/repository"
)

//go:embed migrations
var migrations embed.FS

const backend = "postgres"

// NewStore создает набор репозиториев поверх пула соединений
func NewStore(db *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Members:  NewMemberRepository(db),
		Teams:    NewTeamRepository(db),
		Meetings: NewMeetingRepository(db),
		Votes:    NewVoteRepository(db),
	}
}

// Migrate применяет встроенные миграции в заданном направлении
func Migrate(db *pgxpool.Pool, direction migrate.MigrationDirection) (int, error) {
	sqlDB := stdlib.OpenDBFromPool(db)
	defer sqlDB.Close()

	source := migrate.AssetMigrationSource{
		Asset: migrations.ReadFile,
		AssetDir: func(path string) ([]string, error) {
			entries, err := migrations.ReadDir(path)
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			return names, nil
		},
		Dir: "migrations",
	}

	n, err := migrate.Exec(sqlDB, "postgres", source, direction)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	return n, nil
}

// execer покрывает пул и транзакцию
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// inTx выполняет fn в транзакции и откатывает ее при ошибке
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore error as it will fail if transaction was committed
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isUniqueViolation проверяет нарушение ограничения уникальности
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}

func observe(method string, start time.Time, err *error) {
	metrics.ObserveStorage(backend, method, start, *err)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
