package product

import (
	"errors"
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/shopspring/decimal"
)

// Product is a jersey offered in the catalogue.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   int64           `json:"category"`
	TeamID       int64           `json:"team"`
	Variation    Variation       `json:"variation"`
	BrandID      int64           `json:"brand"`
	CreationYear string          `json:"creation_year"`
	Size         string          `json:"size"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Sold         int             `json:"sold"`
	Filename     string          `json:"filename"`
	Filepath     string          `json:"filepath"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Variation string

const (
	VariationHome          Variation = "Domicile"
	VariationAway          Variation = "Extérieur"
	VariationAlternative   Variation = "Alternative"
	VariationNotApplicable Variation = "Non applicable"
)

var ErrInvalidVariation = errors.New("invalid variation")

func (v Variation) String() string {
	return string(v)
}

func ParseVariation(s string) (Variation, error) {
	switch Variation(s) {
	case VariationHome, VariationAway, VariationAlternative, VariationNotApplicable:
		return Variation(s), nil
	default:
		return "", ErrInvalidVariation
	}
}

// QueryProductsModel represents filter parameters for querying products.
type QueryProductsModel struct {
	IDs         []int64
	CategoryIDs []int64
	TeamIDs     []int64
	BrandIDs    []int64
	// BestSellers orders by sold units, highest first.
	BestSellers bool
	page.Page
}
