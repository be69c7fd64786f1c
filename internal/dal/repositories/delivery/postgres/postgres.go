package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DeliveryDal represents delivery data access layer model.
// Products holds the line items as a JSONB document.
type DeliveryDal struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	Address    string          `db:"address"`
	Products   []byte          `db:"products"`
	TotalPrice decimal.Decimal `db:"total_price"`
	Status     string          `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
}

// ToModel converts DeliveryDal to service layer Order model
func (d *DeliveryDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}

	items := []lineitem.LineItem{}
	if len(d.Products) > 0 {
		if err := json.Unmarshal(d.Products, &items); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}

	return &order.Order{
		ID:         d.ID,
		UserID:     d.UserID,
		Address:    d.Address,
		Products:   items,
		TotalPrice: d.TotalPrice,
		Status:     status,
		CreatedAt:  d.CreatedAt,
	}, nil
}

// DeliveryDalFromModel converts service layer Order model to DeliveryDal
func DeliveryDalFromModel(o *order.Order) (*DeliveryDal, error) {
	products, err := json.Marshal(o.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}

	return &DeliveryDal{
		ID:         o.ID,
		UserID:     o.UserID,
		Address:    o.Address,
		Products:   products,
		TotalPrice: o.TotalPrice,
		Status:     o.Status.String(),
		CreatedAt:  o.CreatedAt,
	}, nil
}

var columns = []string{"id", "user_id", "address", "products", "total_price", "status", "created_at"}

func scan(row pgx.Row) (*order.Order, error) {
	var d DeliveryDal
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Address,
		&d.Products,
		&d.TotalPrice,
		&d.Status,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return d.ToModel()
}

type PostgresDeliveryRepository struct {
	conn postgres.Conn
}

func NewPostgresDeliveryRepository(conn postgres.Conn) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{
		conn: conn,
	}
}

// Insert stores an order row and returns it with id and creation time.
func (r *PostgresDeliveryRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal, err := DeliveryDalFromModel(&o)
	if err != nil {
		return order.Order{}, err
	}

	query, args, err := postgres.StatementBuilder.
		Insert("deliveries").
		Columns("user_id", "address", "products", "total_price", "status").
		Values(dal.UserID, dal.Address, dal.Products, dal.TotalPrice, dal.Status).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build delivery insert: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert delivery: %w", err)
	}

	return *res, nil
}

func (r *PostgresDeliveryRepository) Get(ctx context.Context, id int64) (order.Order, error) {
	query, args, err := postgres.StatementBuilder.
		Select(columns...).
		From("deliveries").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build delivery query: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, fmt.Errorf("delivery %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to get delivery: %w", err)
	}

	return *res, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresDeliveryRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	b := postgres.StatementBuilder.
		Select(columns...).
		From("deliveries")

	if len(filter.IDs) > 0 {
		b = b.Where(sq.Eq{"id": filter.IDs})
	}
	if len(filter.UserIDs) > 0 {
		b = b.Where(sq.Eq{"user_id": filter.UserIDs})
	}
	b = postgres.Paginate(b.OrderBy("created_at DESC", "id DESC"), filter.Page)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build deliveries query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		result = append(result, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *PostgresDeliveryRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	query, args, err := postgres.StatementBuilder.
		Update("deliveries").
		Set("status", status.String()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status update: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresDeliveryRepository) SalesTotal(ctx context.Context, period order.Period) (decimal.Decimal, error) {
	query, args, err := postgres.StatementBuilder.
		Select("COALESCE(SUM(total_price), 0)").
		From("deliveries").
		Where(sq.GtOrEq{"created_at": period.Start}).
		Where(sq.Lt{"created_at": period.End}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build sales query: %w", err)
	}

	var total decimal.Decimal
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sales: %w", err)
	}

	return total, nil
}
