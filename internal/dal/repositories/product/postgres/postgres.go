package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductDal represents product data access layer model
type ProductDal struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Category     int64           `db:"category"`
	Team         int64           `db:"team"`
	Variation    string          `db:"variation"`
	Brand        int64           `db:"brand"`
	CreationYear string          `db:"creation_year"`
	Size         string          `db:"size"`
	Price        decimal.Decimal `db:"price"`
	Quantity     int             `db:"quantity"`
	Sold         int             `db:"sold"`
	Filename     string          `db:"filename"`
	Filepath     string          `db:"filepath"`
	CreatedAt    time.Time       `db:"created_at"`
}

// ToModel converts ProductDal to service layer Product model
func (d *ProductDal) ToModel() product.Product {
	return product.Product{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		CategoryID:   d.Category,
		TeamID:       d.Team,
		Variation:    product.Variation(d.Variation),
		BrandID:      d.Brand,
		CreationYear: d.CreationYear,
		Size:         d.Size,
		Price:        d.Price,
		Quantity:     d.Quantity,
		Sold:         d.Sold,
		Filename:     d.Filename,
		Filepath:     d.Filepath,
		CreatedAt:    d.CreatedAt,
	}
}

// ProductDalFromModel converts service layer Product model to ProductDal
func ProductDalFromModel(p *product.Product) *ProductDal {
	return &ProductDal{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.CategoryID,
		Team:         p.TeamID,
		Variation:    p.Variation.String(),
		Brand:        p.BrandID,
		CreationYear: p.CreationYear,
		Size:         p.Size,
		Price:        p.Price,
		Quantity:     p.Quantity,
		Sold:         p.Sold,
		Filename:     p.Filename,
		Filepath:     p.Filepath,
		CreatedAt:    p.CreatedAt,
	}
}

// values returns the writable columns in the order of writableColumns.
func (d *ProductDal) values() []any {
	return []any{
		d.Name, d.Description, d.Category, d.Team, d.Variation, d.Brand,
		d.CreationYear, d.Size, d.Price, d.Quantity, d.Filename, d.Filepath,
	}
}

var writableColumns = []string{
	"name", "description", "category", "team", "variation", "brand",
	"creation_year", "size", "price", "quantity", "filename", "filepath",
}

var columns = []string{
	"id", "name", "description", "category", "team", "variation", "brand",
	"creation_year", "size", "price", "quantity", "sold", "filename", "filepath", "created_at",
}

func scan(row pgx.Row) (*ProductDal, error) {
	var d ProductDal
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.Category,
		&d.Team,
		&d.Variation,
		&d.Brand,
		&d.CreationYear,
		&d.Size,
		&d.Price,
		&d.Quantity,
		&d.Sold,
		&d.Filename,
		&d.Filepath,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

type PostgresProductRepository struct {
	conn postgres.Conn
}

func NewPostgresProductRepository(conn postgres.Conn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
	}
}

// QueryStock reads the available quantity of the given products with one statement.
func (r *PostgresProductRepository) QueryStock(ctx context.Context, ids []int64) (map[int64]int, error) {
	stock := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return stock, nil
	}

	query, args, err := postgres.StatementBuilder.
		Select("id", "quantity").
		From("products").
		Where(sq.Expr("id = ANY(?)", ids)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stock query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       int64
			quantity int
		)
		if err := rows.Scan(&id, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stock[id] = quantity
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return stock, nil
}

// DecrementStock moves qty units from quantity to sold if enough are left.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	query, args, err := postgres.StatementBuilder.
		Update("products").
		Set("quantity", sq.Expr("quantity - ?", qty)).
		Set("sold", sq.Expr("sold + ?", qty)).
		Where(sq.Eq{"id": id}).
		Where(sq.GtOrEq{"quantity": qty}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build stock update: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock of product %d: %w", id, err)
	}

	return tag.RowsAffected() == 1, nil
}

// Insert creates a product and returns it with its generated fields.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	dal := ProductDalFromModel(&p)
	query, args, err := postgres.StatementBuilder.
		Insert("products").
		Columns(writableColumns...).
		Values(dal.values()...).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build product insert: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to insert product: %w", mapWriteError(err))
	}

	return res.ToModel(), nil
}

// Update overwrites the writable columns of a product. Sold is left untouched.
func (r *PostgresProductRepository) Update(ctx context.Context, p product.Product) (product.Product, error) {
	dal := ProductDalFromModel(&p)
	values := dal.values()
	set := make(map[string]any, len(writableColumns))
	for i, col := range writableColumns {
		set[col] = values[i]
	}

	query, args, err := postgres.StatementBuilder.
		Update("products").
		SetMap(set).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build product update: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, fmt.Errorf("product %d: %w", p.ID, apperr.ErrNotFound)
	}
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to update product: %w", mapWriteError(err))
	}

	return res.ToModel(), nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.StatementBuilder.
		Delete("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build product delete: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresProductRepository) Get(ctx context.Context, id int64) (product.Product, error) {
	query, args, err := postgres.StatementBuilder.
		Select(columns...).
		From("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build product query: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	return res.ToModel(), nil
}

// Query retrieves products based on filter criteria
func (r *PostgresProductRepository) Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	b := postgres.StatementBuilder.
		Select(columns...).
		From("products")

	if len(filter.IDs) > 0 {
		b = b.Where(sq.Eq{"id": filter.IDs})
	}
	if len(filter.CategoryIDs) > 0 {
		b = b.Where(sq.Eq{"category": filter.CategoryIDs})
	}
	if len(filter.TeamIDs) > 0 {
		b = b.Where(sq.Eq{"team": filter.TeamIDs})
	}
	if len(filter.BrandIDs) > 0 {
		b = b.Where(sq.Eq{"brand": filter.BrandIDs})
	}
	if filter.BestSellers {
		b = b.OrderBy("sold DESC", "id")
	} else {
		b = b.OrderBy("id")
	}
	b = postgres.Paginate(b, filter.Page)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	result := []product.Product{}
	for rows.Next() {
		dal, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// mapWriteError turns a foreign key failure into an input error naming the
// offending reference (category, team or brand).
func mapWriteError(err error) error {
	if !postgres.IsForeignKeyViolation(err) {
		return err
	}
	field := strings.TrimSuffix(strings.TrimPrefix(postgres.ConstraintName(err), "products_"), "_fkey")

	return apperr.Invalid(field, "unknown reference")
}
