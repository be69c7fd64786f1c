package catalogsvc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/corray333/jersey-shop/pkg/validation"
	"github.com/shopspring/decimal"
)

const bestSellers = 3

// ProductInput holds the editable fields of a product.
type ProductInput struct {
	Name         string          `json:"name" validate:"required,label"`
	Description  string          `json:"description" validate:"required,description"`
	CategoryID   int64           `json:"category" validate:"required,gt=0"`
	TeamID       int64           `json:"team" validate:"required,gt=0"`
	Variation    string          `json:"variation" validate:"required"`
	BrandID      int64           `json:"brand" validate:"required,gt=0"`
	CreationYear string          `json:"creation_year" validate:"required,year"`
	Size         string          `json:"size" validate:"required,label"`
	Price        decimal.Decimal `json:"price" validate:"-"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
}

func (in ProductInput) toProduct(id int64) (product.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Size = strings.TrimSpace(in.Size)

	if err := validation.Struct(in); err != nil {
		return product.Product{}, err
	}
	variation, err := product.ParseVariation(in.Variation)
	if err != nil {
		return product.Product{}, apperr.Invalid("variation", "must be one of Domicile, Extérieur, Alternative, Non applicable")
	}
	if !in.Price.IsPositive() {
		return product.Product{}, apperr.Invalid("price", "must be positive")
	}

	return product.Product{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		TeamID:       in.TeamID,
		Variation:    variation,
		BrandID:      in.BrandID,
		CreationYear: in.CreationYear,
		Size:         in.Size,
		Price:        in.Price.Round(2),
		Quantity:     in.Quantity,
	}, nil
}

// GetProducts lists products by id.
func (s *CatalogService) GetProducts(ctx context.Context, filter product.QueryProductsModel) ([]product.Product, error) {
	return s.newUOW().ProductRepository().Query(ctx, &filter)
}

// GetBestSellers returns the three products with the most units sold.
func (s *CatalogService) GetBestSellers(ctx context.Context) ([]product.Product, error) {
	return s.newUOW().ProductRepository().Query(ctx, &product.QueryProductsModel{
		BestSellers: true,
		Page:        page.Page{Limit: bestSellers},
	})
}

// GetProduct returns one product.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (product.Product, error) {
	return s.newUOW().ProductRepository().Get(ctx, id)
}

// CreateProduct stores a product and its optional image.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, img *Image) (product.Product, error) {
	p, err := in.toProduct(0)
	if err != nil {
		return product.Product{}, err
	}

	if img != nil {
		if p.Filename, p.Filepath, err = s.saveImage(img); err != nil {
			return product.Product{}, err
		}
	}

	created, err := s.newUOW().ProductRepository().Insert(ctx, p)
	if err != nil {
		s.removeImage(p.Filename)
		return product.Product{}, err
	}

	slog.Info("Product created", "product_id", created.ID)

	return created, nil
}

// UpdateProduct replaces the editable fields of a product. Without a new
// image the previous one is kept.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput, img *Image) (product.Product, error) {
	p, err := in.toProduct(id)
	if err != nil {
		return product.Product{}, err
	}

	repo := s.newUOW().ProductRepository()
	current, err := repo.Get(ctx, id)
	if err != nil {
		return product.Product{}, err
	}

	p.Filename, p.Filepath = current.Filename, current.Filepath
	if img != nil {
		if p.Filename, p.Filepath, err = s.saveImage(img); err != nil {
			return product.Product{}, err
		}
	}

	updated, err := repo.Update(ctx, p)
	if err != nil {
		if img != nil {
			s.removeImage(p.Filename)
		}
		return product.Product{}, err
	}
	if img != nil {
		s.removeImage(current.Filename)
	}

	return updated, nil
}

// DeleteProduct removes a product and its image.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	repo := s.newUOW().ProductRepository()
	current, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(current.Filename)

	slog.Info("Product deleted", "product_id", id)

	return nil
}
