package catalogsvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/corray333/jersey-shop/internal/dal/memory"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func withUnitOfWork(fn func() unitOfWork) option {
	return func(s *CatalogService) {
		s.newUOW = fn
	}
}

type fixture struct {
	svc   *CatalogService
	store *memory.Store
	dir   string
	input ProductInput
	clock int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{store: store, dir: t.TempDir()}
	f.svc = MustNewCatalogService(
		WithUploadsDir(f.dir),
		withUnitOfWork(func() unitOfWork { return store.NewUnitOfWork() }),
	)
	f.svc.now = func() time.Time {
		f.clock++
		return time.Unix(1_700_000_000, f.clock)
	}

	ctx := context.Background()
	c, err := f.svc.CreateCategory(ctx, NameInput{Name: "Maillots"})
	require.NoError(t, err)
	tm, err := f.svc.CreateTeam(ctx, TeamInput{Name: "Olympique de Marseille", Color: "#2faee0"})
	require.NoError(t, err)
	b, err := f.svc.CreateBrand(ctx, NameInput{Name: "Puma"})
	require.NoError(t, err)

	f.input = ProductInput{
		Name:         "Maillot OM Domicile",
		Description:  "Maillot officiel, saison 2024",
		CategoryID:   c.ID,
		TeamID:       tm.ID,
		Variation:    "Domicile",
		BrandID:      b.ID,
		CreationYear: "2024",
		Size:         "M",
		Price:        decimal.RequireFromString("89.99"),
		Quantity:     12,
	}

	return f
}

func image(name, content string) *Image {
	return &Image{Filename: name, Content: strings.NewReader(content)}
}

func TestCreateProductWithImage(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.CreateProduct(context.Background(), f.input, image("photo.PNG", "png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, product.VariationHome, p.Variation)
	assert.True(t, strings.HasSuffix(p.Filename, ".png"))
	assert.Equal(t, PublicPrefix+p.Filename, p.Filepath)

	data, err := os.ReadFile(filepath.Join(f.dir, p.Filename))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		edit  func(in *ProductInput)
		field string
	}{
		{"html name", func(in *ProductInput) { in.Name = "<script>" }, "name"},
		{"no description", func(in *ProductInput) { in.Description = " " }, "description"},
		{"variation", func(in *ProductInput) { in.Variation = "Third" }, "variation"},
		{"year", func(in *ProductInput) { in.CreationYear = "24" }, "creation_year"},
		{"zero price", func(in *ProductInput) { in.Price = decimal.Zero }, "price"},
		{"negative quantity", func(in *ProductInput) { in.Quantity = -1 }, "quantity"},
		{"unknown team", func(in *ProductInput) { in.TeamID = 999 }, "team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input
			tt.edit(&in)

			_, err := f.svc.CreateProduct(context.Background(), in, nil)
			require.ErrorIs(t, err, apperr.ErrInvalidInput)

			var ferr *apperr.FieldError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.field, ferr.Field)
		})
	}
}

func TestCreateProductRejectsImageType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateProduct(context.Background(), f.input, image("payload.sh", "#!/bin/sh"))
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateProductUnknownReferenceRemovesImage(t *testing.T) {
	f := newFixture(t)
	in := f.input
	in.BrandID = 999

	_, err := f.svc.CreateProduct(context.Background(), in, image("a.jpg", "x"))
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateProductKeepsImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, f.input, image("a.jpg", "first"))
	require.NoError(t, err)

	in := f.input
	in.Price = decimal.NewFromInt(70)
	updated, err := f.svc.UpdateProduct(ctx, created.ID, in, nil)
	require.NoError(t, err)
	assert.Equal(t, created.Filename, updated.Filename)
	assert.True(t, decimal.NewFromInt(70).Equal(updated.Price))

	replaced, err := f.svc.UpdateProduct(ctx, created.ID, in, image("b.webp", "second"))
	require.NoError(t, err)
	assert.NotEqual(t, created.Filename, replaced.Filename)

	_, err = os.Stat(filepath.Join(f.dir, created.Filename))
	assert.True(t, os.IsNotExist(err))

	_, err = f.svc.UpdateProduct(ctx, 999, in, nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProductKeepsSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, f.input, nil)
	require.NoError(t, err)

	ok, err := f.store.NewUnitOfWork().ProductRepository().DecrementStock(ctx, created.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := f.svc.UpdateProduct(ctx, created.ID, f.input, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Sold)
	assert.Equal(t, 12, updated.Quantity)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, f.input, image("a.gif", "gif"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProduct(ctx, created.ID))
	_, err = f.svc.GetProduct(ctx, created.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = os.Stat(filepath.Join(f.dir, created.Filename))
	assert.True(t, os.IsNotExist(err))

	require.ErrorIs(t, f.svc.DeleteProduct(ctx, created.ID), apperr.ErrNotFound)
}

func TestBestSellers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.store.NewUnitOfWork().ProductRepository()

	sold := []int{1, 5, 0, 3}
	ids := make([]int64, len(sold))
	for i, n := range sold {
		p, err := f.svc.CreateProduct(ctx, f.input, nil)
		require.NoError(t, err)
		ids[i] = p.ID
		if n > 0 {
			ok, err := repo.DecrementStock(ctx, p.ID, n)
			require.NoError(t, err)
			require.True(t, ok)
		}
	}

	best, err := f.svc.GetBestSellers(ctx)
	require.NoError(t, err)
	require.Len(t, best, 3)
	assert.Equal(t, []int64{ids[1], ids[3], ids[0]}, []int64{best[0].ID, best[1].ID, best[2].ID})

	all, err := f.svc.GetProducts(ctx, product.QueryProductsModel{Page: page.Page{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ids[2], all[0].ID)
}

func TestTaxonomyInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.CreateProduct(ctx, f.input, nil)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteCategory(ctx, p.CategoryID), apperr.ErrInUse)
	require.ErrorIs(t, f.svc.DeleteBrand(ctx, p.BrandID), apperr.ErrInUse)
	require.ErrorIs(t, f.svc.DeleteTeam(ctx, p.TeamID), apperr.ErrInUse)

	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))
	require.NoError(t, f.svc.DeleteCategory(ctx, p.CategoryID))
	_, err = f.svc.GetCategory(ctx, p.CategoryID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTeamValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTeam(ctx, TeamInput{Name: "PSG", Color: "blue"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	tm, err := f.svc.CreateTeam(ctx, TeamInput{Name: "PSG", Color: "#004170"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTeam(ctx, tm.ID, TeamInput{Name: "Paris SG", Color: "#da291c"})
	require.NoError(t, err)
	assert.Equal(t, "#DA291C", updated.Color)

	teams, err := f.svc.GetTeams(ctx, page.Page{})
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	_, err = f.svc.UpdateBrand(ctx, 999, NameInput{Name: "Nike"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
