package params

import (
	"net/http"
	"strconv"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

type pageQuery struct {
	Limit  uint64 `schema:"limit,omitempty"`
	Offset uint64 `schema:"offset,omitempty"`
}

// Page decodes ?limit=&offset=. Both are optional.
func Page(r *http.Request) (page.Page, error) {
	var q pageQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		return page.Page{}, apperr.Invalid("query", err.Error())
	}

	return page.Page{Limit: q.Limit, Offset: q.Offset}, nil
}

// ID reads a positive integer path parameter.
func ID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(name, "must be a positive integer")
	}

	return id, nil
}

// UserID returns the id of the authenticated caller. Only valid behind the
// auth middleware.
func UserID(r *http.Request) int64 {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return 0
	}

	return claims.UserID
}
