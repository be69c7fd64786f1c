package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/jackc/pgx/v5"
)

type PostgresCategoryRepository struct {
	conn postgres.Conn
}

func NewPostgresCategoryRepository(conn postgres.Conn) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{
		conn: conn,
	}
}

func (r *PostgresCategoryRepository) Insert(ctx context.Context, c category.Category) (category.Category, error) {
	query, args, err := postgres.StatementBuilder.
		Insert("categories").
		Columns("name").
		Values(c.Name).
		Suffix("RETURNING id, name").
		ToSql()
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to build category insert: %w", err)
	}

	var res category.Category
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&res.ID, &res.Name); err != nil {
		return category.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}

	return res, nil
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c category.Category) (category.Category, error) {
	query, args, err := postgres.StatementBuilder.
		Update("categories").
		Set("name", c.Name).
		Where(sq.Eq{"id": c.ID}).
		Suffix("RETURNING id, name").
		ToSql()
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to build category update: %w", err)
	}

	var res category.Category
	err = r.conn.QueryRow(ctx, query, args...).Scan(&res.ID, &res.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return category.Category{}, fmt.Errorf("category %d: %w", c.ID, apperr.ErrNotFound)
	}
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to update category: %w", err)
	}

	return res, nil
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.StatementBuilder.
		Delete("categories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build category delete: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if postgres.IsForeignKeyViolation(err) {
		return fmt.Errorf("category %d: %w", id, apperr.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresCategoryRepository) Get(ctx context.Context, id int64) (category.Category, error) {
	query, args, err := postgres.StatementBuilder.
		Select("id", "name").
		From("categories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to build category query: %w", err)
	}

	var res category.Category
	err = r.conn.QueryRow(ctx, query, args...).Scan(&res.ID, &res.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return category.Category{}, fmt.Errorf("category %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to get category: %w", err)
	}

	return res, nil
}

func (r *PostgresCategoryRepository) List(ctx context.Context, p page.Page) ([]category.Category, error) {
	query, args, err := postgres.Paginate(
		postgres.StatementBuilder.Select("id", "name").From("categories").OrderBy("id"), p,
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	result := []category.Category{}
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
