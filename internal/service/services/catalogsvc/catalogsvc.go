package catalogsvc

import (
	"time"

	"github.com/corray333/jersey-shop/internal/dal/interfaces/ibrandrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/icategoryrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/jersey-shop/internal/dal/interfaces/iteamrepo"
	"github.com/corray333/jersey-shop/internal/dal/postgres"
	"github.com/corray333/jersey-shop/internal/dal/uow"
)

const defaultUploadsDir = "./uploads"

// CatalogService manages products and the categories, brands and teams they
// reference.
type CatalogService struct {
	pgClient   *postgres.Client
	newUOW     func() unitOfWork
	uploadsDir string
	now        func() time.Time
}

type unitOfWork interface {
	ProductRepository() iproductrepo.Repository
	CategoryRepository() icategoryrepo.Repository
	BrandRepository() ibrandrepo.Repository
	TeamRepository() iteamrepo.Repository
}

type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{
		uploadsDir: defaultUploadsDir,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		if s.pgClient == nil {
			panic("catalogsvc: postgres client is required")
		}
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CatalogService) {
		s.pgClient = pgClient
	}
}

// WithUploadsDir sets the directory product images are written to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUploadsDir(dir string) option {
	return func(s *CatalogService) {
		if dir != "" {
			s.uploadsDir = dir
		}
	}
}
