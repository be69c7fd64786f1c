package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/brand"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/jackc/pgx/v5"
)

type PostgresBrandRepository struct {
	conn postgres.Conn
}

func NewPostgresBrandRepository(conn postgres.Conn) *PostgresBrandRepository {
	return &PostgresBrandRepository{
		conn: conn,
	}
}

func (r *PostgresBrandRepository) Insert(ctx context.Context, b brand.Brand) (brand.Brand, error) {
	query, args, err := postgres.StatementBuilder.
		Insert("brands").
		Columns("name").
		Values(b.Name).
		Suffix("RETURNING id, name").
		ToSql()
	if err != nil {
		return brand.Brand{}, fmt.Errorf("failed to build brand insert: %w", err)
	}

	var res brand.Brand
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&res.ID, &res.Name); err != nil {
		return brand.Brand{}, fmt.Errorf("failed to insert brand: %w", err)
	}

	return res, nil
}

func (r *PostgresBrandRepository) Update(ctx context.Context, b brand.Brand) (brand.Brand, error) {
	query, args, err := postgres.StatementBuilder.
		Update("brands").
		Set("name", b.Name).
		Where(sq.Eq{"id": b.ID}).
		Suffix("RETURNING id, name").
		ToSql()
	if err != nil {
		return brand.Brand{}, fmt.Errorf("failed to build brand update: %w", err)
	}

	var res brand.Brand
	err = r.conn.QueryRow(ctx, query, args...).Scan(&res.ID, &res.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return brand.Brand{}, fmt.Errorf("brand %d: %w", b.ID, apperr.ErrNotFound)
	}
	if err != nil {
		return brand.Brand{}, fmt.Errorf("failed to update brand: %w", err)
	}

	return res, nil
}

func (r *PostgresBrandRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.StatementBuilder.
		Delete("brands").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build brand delete: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if postgres.IsForeignKeyViolation(err) {
		return fmt.Errorf("brand %d: %w", id, apperr.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("brand %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresBrandRepository) Get(ctx context.Context, id int64) (brand.Brand, error) {
	query, args, err := postgres.StatementBuilder.
		Select("id", "name").
		From("brands").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return brand.Brand{}, fmt.Errorf("failed to build brand query: %w", err)
	}

	var res brand.Brand
	err = r.conn.QueryRow(ctx, query, args...).Scan(&res.ID, &res.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return brand.Brand{}, fmt.Errorf("brand %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return brand.Brand{}, fmt.Errorf("failed to get brand: %w", err)
	}

	return res, nil
}

func (r *PostgresBrandRepository) List(ctx context.Context, p page.Page) ([]brand.Brand, error) {
	query, args, err := postgres.Paginate(
		postgres.StatementBuilder.Select("id", "name").From("brands").OrderBy("id"), p,
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build brands query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	result := []brand.Brand{}
	for rows.Next() {
		var b brand.Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		result = append(result, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
