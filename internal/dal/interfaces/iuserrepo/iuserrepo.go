package iuserrepo

import (
	"context"
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/user"
)

// Repository is an interface for user repository.
type Repository interface {
	Insert(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Query(ctx context.Context, filter *user.QueryUsersModel) ([]user.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
