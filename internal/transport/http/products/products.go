package products

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/product"
	"github.com/corray333/jersey-shop/internal/service/services/catalogsvc"
	"github.com/corray333/jersey-shop/internal/transport/http/params"
	"github.com/corray333/jersey-shop/pkg/http/response"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

const maxUploadSize = 10 << 20

// maxFormBytes bounds the whole product form: the image plus room for the
// text fields and multipart framing.
var maxFormBytes int64 = maxUploadSize + 1<<20

type service interface {
	GetProducts(ctx context.Context, filter product.QueryProductsModel) ([]product.Product, error)
	GetBestSellers(ctx context.Context) ([]product.Product, error)
	GetProduct(ctx context.Context, id int64) (product.Product, error)
	CreateProduct(ctx context.Context, in catalogsvc.ProductInput, img *catalogsvc.Image) (product.Product, error)
	UpdateProduct(ctx context.Context, id int64, in catalogsvc.ProductInput, img *catalogsvc.Image) (product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(decimal.Decimal{}, func(s string) reflect.Value {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(v)
	})

	return d
}

type productForm struct {
	Name         string          `schema:"name"`
	Description  string          `schema:"description"`
	Category     int64           `schema:"category"`
	Team         int64           `schema:"team"`
	Variation    string          `schema:"variation"`
	Brand        int64           `schema:"brand"`
	CreationYear string          `schema:"creation_year"`
	Size         string          `schema:"size"`
	Price        decimal.Decimal `schema:"price"`
	Quantity     int             `schema:"quantity"`
}

func (f productForm) toInput() catalogsvc.ProductInput {
	return catalogsvc.ProductInput{
		Name:         f.Name,
		Description:  f.Description,
		CategoryID:   f.Category,
		TeamID:       f.Team,
		Variation:    f.Variation,
		BrandID:      f.Brand,
		CreationYear: f.CreationYear,
		Size:         f.Size,
		Price:        f.Price,
		Quantity:     f.Quantity,
	}
}

type listQuery struct {
	Categories []int64 `schema:"category"`
	Teams      []int64 `schema:"team"`
	Brands     []int64 `schema:"brand"`
	Limit      uint64  `schema:"limit"`
	Offset     uint64  `schema:"offset"`
}

// readForm decodes a multipart or urlencoded product form. The returned
// cleanup closes the uploaded file, if any.
func readForm(w http.ResponseWriter, r *http.Request) (catalogsvc.ProductInput, *catalogsvc.Image, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	// ParseForm reads urlencoded bodies and leaves multipart ones alone.
	// ParseMultipartForm would swallow its error, so it runs first.
	if err := r.ParseForm(); err != nil {
		return catalogsvc.ProductInput{}, nil, noop, formError("form", err)
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return catalogsvc.ProductInput{}, nil, noop, formError("form", err)
	}

	var form productForm
	if err := decoder.Decode(&form, r.PostForm); err != nil {
		return catalogsvc.ProductInput{}, nil, noop, apperr.Invalid("form", err.Error())
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form.toInput(), nil, noop, nil
	}
	if err != nil {
		return catalogsvc.ProductInput{}, nil, noop, formError("image", err)
	}

	img := &catalogsvc.Image{Filename: header.Filename, Content: file}

	return form.toInput(), img, func() { _ = file.Close() }, nil
}

// formError keeps an oversized body distinguishable so it is answered with 413.
func formError(field string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}

	return apperr.Invalid(field, err.Error())
}

// List returns products, optionally filtered by category, team or brand.
//
// @Summary List products
// @Tags    products
// @Produce json
// @Param   category query []int false "Category ids"
// @Param   team     query []int false "Team ids"
// @Param   brand    query []int false "Brand ids"
// @Param   limit    query int   false "Page size"
// @Param   offset   query int   false "Rows to skip"
// @Success 200 {array} product.Product
// @Router  /products [get]
func List(w http.ResponseWriter, r *http.Request, service service) {
	var q listQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		response.FromError(w, r, apperr.Invalid("query", err.Error()))
		return
	}

	products, err := service.GetProducts(r.Context(), product.QueryProductsModel{
		CategoryIDs: q.Categories,
		TeamIDs:     q.Teams,
		BrandIDs:    q.Brands,
		Page:        page.Page{Limit: q.Limit, Offset: q.Offset},
	})
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeProducts(w, products)
}

// Best returns the three best sellers.
//
// @Summary  Best sellers
// @Tags     products
// @Produce  json
// @Success  200 {array} product.Product
// @Security BearerAuth
// @Router   /products/best [get]
func Best(w http.ResponseWriter, r *http.Request, service service) {
	products, err := service.GetBestSellers(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeProducts(w, products)
}

func writeProducts(w http.ResponseWriter, products []product.Product) {
	if products == nil {
		products = []product.Product{}
	}
	response.JSON(w, http.StatusOK, products)
}

// Get returns one product.
//
// @Summary Get a product
// @Tags    products
// @Produce json
// @Param   id path int true "Product id"
// @Success 200 {object} product.Product
// @Failure 404 {object} response.ErrorBody
// @Router  /products/{id} [get]
func Get(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	p, err := service.GetProduct(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, p)
}

// Create adds a product from a multipart form with an optional image.
//
// @Summary  Create a product
// @Tags     products
// @Accept   multipart/form-data
// @Produce  json
// @Param    name          formData string true  "Name"
// @Param    description   formData string true  "Description"
// @Param    category      formData int    true  "Category id"
// @Param    team          formData int    true  "Team id"
// @Param    variation     formData string true  "Domicile, Extérieur, Alternative or Non applicable"
// @Param    brand         formData int    true  "Brand id"
// @Param    creation_year formData string true  "Four digit year"
// @Param    size          formData string true  "Size"
// @Param    price         formData string true  "Unit price"
// @Param    quantity      formData int    true  "Stock"
// @Param    image         formData file   false "Picture"
// @Success  201 {object} product.Product
// @Failure  400 {object} response.ErrorBody
// @Failure  413 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /products/create [post]
func Create(w http.ResponseWriter, r *http.Request, service service) {
	in, img, cleanup, err := readForm(w, r)
	defer cleanup()
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	p, err := service.CreateProduct(r.Context(), in, img)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, p)
}

// Update replaces a product. Without an image the previous one is kept.
//
// @Summary  Update a product
// @Tags     products
// @Accept   multipart/form-data
// @Produce  json
// @Param    id    path     int  true  "Product id"
// @Param    image formData file false "Picture"
// @Success  200 {object} product.Product
// @Failure  400 {object} response.ErrorBody
// @Failure  404 {object} response.ErrorBody
// @Failure  413 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /products/update/{id} [put]
func Update(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	in, img, cleanup, err := readForm(w, r)
	defer cleanup()
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	p, err := service.UpdateProduct(r.Context(), id, in, img)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, p)
}

// Delete removes a product.
//
// @Summary  Delete a product
// @Tags     products
// @Produce  json
// @Param    id path int true "Product id"
// @Success  200 {object} response.MessageBody
// @Failure  404 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /products/delete/{id} [delete]
func Delete(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	if err := service.DeleteProduct(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Message(w, "product deleted")
}
