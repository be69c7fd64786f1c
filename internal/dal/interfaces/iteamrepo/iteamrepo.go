package iteamrepo

import (
	"context"

	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/team"
)

type Repository interface {
	Insert(ctx context.Context, t team.Team) (team.Team, error)
	Update(ctx context.Context, t team.Team) (team.Team, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (team.Team, error)
	List(ctx context.Context, p page.Page) ([]team.Team, error)
}
