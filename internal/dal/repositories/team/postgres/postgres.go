package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/team"
	"github.com/jackc/pgx/v5"
)

type PostgresTeamRepository struct {
	conn postgres.Conn
}

func NewPostgresTeamRepository(conn postgres.Conn) *PostgresTeamRepository {
	return &PostgresTeamRepository{
		conn: conn,
	}
}

func scan(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(&t.ID, &t.Name, &t.Color)

	return t, err
}

func (r *PostgresTeamRepository) Insert(ctx context.Context, t team.Team) (team.Team, error) {
	query, args, err := postgres.StatementBuilder.
		Insert("teams").
		Columns("name", "color").
		Values(t.Name, t.Color).
		Suffix("RETURNING id, name, color").
		ToSql()
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to build team insert: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to insert team: %w", err)
	}

	return res, nil
}

func (r *PostgresTeamRepository) Update(ctx context.Context, t team.Team) (team.Team, error) {
	query, args, err := postgres.StatementBuilder.
		Update("teams").
		Set("name", t.Name).
		Set("color", t.Color).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING id, name, color").
		ToSql()
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to build team update: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return team.Team{}, fmt.Errorf("team %d: %w", t.ID, apperr.ErrNotFound)
	}
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to update team: %w", err)
	}

	return res, nil
}

func (r *PostgresTeamRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.StatementBuilder.
		Delete("teams").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build team delete: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if postgres.IsForeignKeyViolation(err) {
		return fmt.Errorf("team %d: %w", id, apperr.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("team %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresTeamRepository) Get(ctx context.Context, id int64) (team.Team, error) {
	query, args, err := postgres.StatementBuilder.
		Select("id", "name", "color").
		From("teams").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to build team query: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return team.Team{}, fmt.Errorf("team %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return team.Team{}, fmt.Errorf("failed to get team: %w", err)
	}

	return res, nil
}

func (r *PostgresTeamRepository) List(ctx context.Context, p page.Page) ([]team.Team, error) {
	query, args, err := postgres.Paginate(
		postgres.StatementBuilder.Select("id", "name", "color").From("teams").OrderBy("id"), p,
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teams query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	result := []team.Team{}
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		result = append(result, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
