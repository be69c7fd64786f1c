package catalogsvc

import (
	"context"
	"strings"

	"github.com/corray333/jersey-shop/internal/service/models/brand"
	"github.com/corray333/jersey-shop/internal/service/models/category"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/team"
	"github.com/corray333/jersey-shop/pkg/validation"
)

// NameInput is the payload of categories and brands.
type NameInput struct {
	Name string `json:"name" validate:"required,label"`
}

// TeamInput is the payload of teams.
type TeamInput struct {
	Name  string `json:"name" validate:"required,label"`
	Color string `json:"color" validate:"required,rgbhex"`
}

func (in NameInput) validated() (NameInput, error) {
	in.Name = strings.TrimSpace(in.Name)

	return in, validation.Struct(in)
}

func (in TeamInput) validated() (TeamInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.ToUpper(strings.TrimSpace(in.Color))

	return in, validation.Struct(in)
}

func (s *CatalogService) GetCategories(ctx context.Context, p page.Page) ([]category.Category, error) {
	return s.newUOW().CategoryRepository().List(ctx, p)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (category.Category, error) {
	return s.newUOW().CategoryRepository().Get(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in NameInput) (category.Category, error) {
	in, err := in.validated()
	if err != nil {
		return category.Category{}, err
	}

	return s.newUOW().CategoryRepository().Insert(ctx, category.Category{Name: in.Name})
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, in NameInput) (category.Category, error) {
	in, err := in.validated()
	if err != nil {
		return category.Category{}, err
	}

	return s.newUOW().CategoryRepository().Update(ctx, category.Category{ID: id, Name: in.Name})
}

// DeleteCategory fails with apperr.ErrInUse while products reference the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.newUOW().CategoryRepository().Delete(ctx, id)
}

func (s *CatalogService) GetBrands(ctx context.Context, p page.Page) ([]brand.Brand, error) {
	return s.newUOW().BrandRepository().List(ctx, p)
}

func (s *CatalogService) GetBrand(ctx context.Context, id int64) (brand.Brand, error) {
	return s.newUOW().BrandRepository().Get(ctx, id)
}

func (s *CatalogService) CreateBrand(ctx context.Context, in NameInput) (brand.Brand, error) {
	in, err := in.validated()
	if err != nil {
		return brand.Brand{}, err
	}

	return s.newUOW().BrandRepository().Insert(ctx, brand.Brand{Name: in.Name})
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id int64, in NameInput) (brand.Brand, error) {
	in, err := in.validated()
	if err != nil {
		return brand.Brand{}, err
	}

	return s.newUOW().BrandRepository().Update(ctx, brand.Brand{ID: id, Name: in.Name})
}

// DeleteBrand fails with apperr.ErrInUse while products reference the brand.
func (s *CatalogService) DeleteBrand(ctx context.Context, id int64) error {
	return s.newUOW().BrandRepository().Delete(ctx, id)
}

func (s *CatalogService) GetTeams(ctx context.Context, p page.Page) ([]team.Team, error) {
	return s.newUOW().TeamRepository().List(ctx, p)
}

func (s *CatalogService) GetTeam(ctx context.Context, id int64) (team.Team, error) {
	return s.newUOW().TeamRepository().Get(ctx, id)
}

func (s *CatalogService) CreateTeam(ctx context.Context, in TeamInput) (team.Team, error) {
	in, err := in.validated()
	if err != nil {
		return team.Team{}, err
	}

	return s.newUOW().TeamRepository().Insert(ctx, team.Team{Name: in.Name, Color: in.Color})
}

func (s *CatalogService) UpdateTeam(ctx context.Context, id int64, in TeamInput) (team.Team, error) {
	in, err := in.validated()
	if err != nil {
		return team.Team{}, err
	}

	return s.newUOW().TeamRepository().Update(ctx, team.Team{ID: id, Name: in.Name, Color: in.Color})
}

// DeleteTeam fails with apperr.ErrInUse while products reference the team.
func (s *CatalogService) DeleteTeam(ctx context.Context, id int64) error {
	return s.newUOW().TeamRepository().Delete(ctx, id)
}
