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
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/jackc/pgx/v5"
)

// UserDal represents user data access layer model
type UserDal struct {
	ID          int64      `db:"id"`
	Role        string     `db:"role"`
	Firstname   string     `db:"firstname"`
	Lastname    string     `db:"lastname"`
	Email       string     `db:"email"`
	Password    string     `db:"password"`
	Telephone   string     `db:"telephone"`
	Address     string     `db:"address"`
	Zipcode     string     `db:"zipcode"`
	CreatedAt   time.Time  `db:"created_at"`
	LastLoginAt *time.Time `db:"last_login_at"`
}

// ToModel converts UserDal to service layer User model
func (d *UserDal) ToModel() user.User {
	return user.User{
		ID:           d.ID,
		Role:         user.ParseRole(d.Role),
		Firstname:    d.Firstname,
		Lastname:     d.Lastname,
		Email:        d.Email,
		PasswordHash: d.Password,
		Telephone:    d.Telephone,
		Address:      d.Address,
		Zipcode:      d.Zipcode,
		CreatedAt:    d.CreatedAt,
		LastLoginAt:  d.LastLoginAt,
	}
}

// UserDalFromModel converts service layer User model to UserDal
func UserDalFromModel(u *user.User) *UserDal {
	return &UserDal{
		ID:          u.ID,
		Role:        string(u.Role),
		Firstname:   u.Firstname,
		Lastname:    u.Lastname,
		Email:       u.Email,
		Password:    u.PasswordHash,
		Telephone:   u.Telephone,
		Address:     u.Address,
		Zipcode:     u.Zipcode,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func (d *UserDal) writable() map[string]any {
	return map[string]any{
		"role":      d.Role,
		"firstname": d.Firstname,
		"lastname":  d.Lastname,
		"email":     d.Email,
		"password":  d.Password,
		"telephone": d.Telephone,
		"address":   d.Address,
		"zipcode":   d.Zipcode,
	}
}

var columns = []string{
	"id", "role", "firstname", "lastname", "email", "password",
	"telephone", "address", "zipcode", "created_at", "last_login_at",
}

func scan(row pgx.Row) (*UserDal, error) {
	var d UserDal
	err := row.Scan(
		&d.ID,
		&d.Role,
		&d.Firstname,
		&d.Lastname,
		&d.Email,
		&d.Password,
		&d.Telephone,
		&d.Address,
		&d.Zipcode,
		&d.CreatedAt,
		&d.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

type PostgresUserRepository struct {
	conn postgres.Conn
}

func NewPostgresUserRepository(conn postgres.Conn) *PostgresUserRepository {
	return &PostgresUserRepository{
		conn: conn,
	}
}

func (r *PostgresUserRepository) Insert(ctx context.Context, u user.User) (user.User, error) {
	query, args, err := postgres.StatementBuilder.
		Insert("users").
		SetMap(UserDalFromModel(&u).writable()).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return user.User{}, fmt.Errorf("failed to build user insert: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if postgres.IsUniqueViolation(err) {
		return user.User{}, fmt.Errorf("email %q: %w", u.Email, apperr.ErrConflict)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return res.ToModel(), nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	query, args, err := postgres.StatementBuilder.
		Update("users").
		SetMap(UserDalFromModel(&u).writable()).
		Where(sq.Eq{"id": u.ID}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return user.User{}, fmt.Errorf("failed to build user update: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return user.User{}, fmt.Errorf("user %d: %w", u.ID, apperr.ErrNotFound)
	case postgres.IsUniqueViolation(err):
		return user.User{}, fmt.Errorf("email %q: %w", u.Email, apperr.ErrConflict)
	case err != nil:
		return user.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return res.ToModel(), nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.StatementBuilder.
		Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user delete: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if postgres.IsForeignKeyViolation(err) {
		return fmt.Errorf("user %d has orders: %w", id, apperr.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresUserRepository) Get(ctx context.Context, id int64) (user.User, error) {
	return r.getBy(ctx, sq.Eq{"id": id}, fmt.Sprintf("user %d", id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, sq.Eq{"email": email}, fmt.Sprintf("user %q", email))
}

func (r *PostgresUserRepository) getBy(ctx context.Context, where sq.Eq, what string) (user.User, error) {
	query, args, err := postgres.StatementBuilder.
		Select(columns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return user.User{}, fmt.Errorf("failed to build user query: %w", err)
	}

	res, err := scan(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return res.ToModel(), nil
}

// Query retrieves users based on filter criteria
func (r *PostgresUserRepository) Query(ctx context.Context, filter *user.QueryUsersModel) ([]user.User, error) {
	b := postgres.StatementBuilder.
		Select(columns...).
		From("users")

	if len(filter.IDs) > 0 {
		b = b.Where(sq.Eq{"id": filter.IDs})
	}
	if len(filter.Emails) > 0 {
		b = b.Where(sq.Eq{"email": filter.Emails})
	}
	if filter.Latest {
		b = b.OrderBy("created_at DESC", "id DESC")
	} else {
		b = b.OrderBy("id")
	}
	b = postgres.Paginate(b, filter.Page)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	result := []user.User{}
	for rows.Next() {
		dal, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *PostgresUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	query, args, err := postgres.StatementBuilder.
		Update("users").
		Set("last_login_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build login update: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
