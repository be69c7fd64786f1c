package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/jersey-shop/internal/dal/interfaces/ibrandrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/icategoryrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/ideliveryrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iteamrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	brandrepo "github.com/corray333/jersey-shop/internal/dal/repositories/brand/postgres"
	categoryrepo "github.com/corray333/jersey-shop/internal/dal/repositories/category/postgres"
	deliveryrepo "github.com/corray333/jersey-shop/internal/dal/repositories/delivery/postgres"
	productrepo "github.com/corray333/jersey-shop/internal/dal/repositories/product/postgres"
	teamrepo "github.com/corray333/jersey-shop/internal/dal/repositories/team/postgres"
	userrepo "github.com/corray333/jersey-shop/internal/dal/repositories/user/postgres"
	"github.com/jackc/pgx/v5"
)

// ErrTxActive is returned by Begin when the unit of work already holds a transaction.
var ErrTxActive = errors.New("transaction already started")

type beginner interface {
	postgres.Conn
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UnitOfWork groups repositories that share one connection or transaction.
// Before Begin the repositories run on the pool, after Begin on the transaction.
type UnitOfWork struct {
	db beginner
	tx pgx.Tx

	productRepo  iproductrepo.Repository
	deliveryRepo ideliveryrepo.Repository
	userRepo     iuserrepo.Repository
	categoryRepo icategoryrepo.Repository
	brandRepo    ibrandrepo.Repository
	teamRepo     iteamrepo.Repository
}

func (u *UnitOfWork) ProductRepository() iproductrepo.Repository {
	return u.productRepo
}

func (u *UnitOfWork) DeliveryRepository() ideliveryrepo.Repository {
	return u.deliveryRepo
}

func (u *UnitOfWork) UserRepository() iuserrepo.Repository {
	return u.userRepo
}

func (u *UnitOfWork) CategoryRepository() icategoryrepo.Repository {
	return u.categoryRepo
}

func (u *UnitOfWork) BrandRepository() ibrandrepo.Repository {
	return u.brandRepo
}

func (u *UnitOfWork) TeamRepository() iteamrepo.Repository {
	return u.teamRepo
}

func NewUnitOfWork(db *postgres.Client) *UnitOfWork {
	return newUnitOfWork(db.Pool())
}

func newUnitOfWork(db beginner) *UnitOfWork {
	u := &UnitOfWork{db: db}
	u.bind(db)

	return u
}

func (u *UnitOfWork) bind(conn postgres.Conn) {
	u.productRepo = productrepo.NewPostgresProductRepository(conn)
	u.deliveryRepo = deliveryrepo.NewPostgresDeliveryRepository(conn)
	u.userRepo = userrepo.NewPostgresUserRepository(conn)
	u.categoryRepo = categoryrepo.NewPostgresCategoryRepository(conn)
	u.brandRepo = brandrepo.NewPostgresBrandRepository(conn)
	u.teamRepo = teamrepo.NewPostgresTeamRepository(conn)
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxActive
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	defer u.reset()

	return u.tx.Commit(ctx)
}

// Rollback is a no-op after a successful Commit.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	defer u.reset()

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}

func (u *UnitOfWork) reset() {
	u.tx = nil
	u.bind(u.db)
}
