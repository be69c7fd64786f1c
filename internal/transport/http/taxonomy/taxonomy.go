// Package taxonomy serves the categories, brands and teams products are
// classified by. The three resources share one set of handlers.
package taxonomy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/transport/http/params"
	"github.com/corray333/jersey-shop/pkg/http/response"
)

// Resource binds the handlers to one taxonomy's service methods.
type Resource[T, In any] struct {
	Name   string
	List   func(ctx context.Context, p page.Page) ([]T, error)
	Get    func(ctx context.Context, id int64) (T, error)
	Create func(ctx context.Context, in In) (T, error)
	Update func(ctx context.Context, id int64, in In) (T, error)
	Delete func(ctx context.Context, id int64) error
}

func (res Resource[T, In]) HandleList(w http.ResponseWriter, r *http.Request) {
	p, err := params.Page(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	items, err := res.List(r.Context(), p)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}

	response.JSON(w, http.StatusOK, items)
}

func (res Resource[T, In]) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	item, err := res.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, item)
}

func (res Resource[T, In]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, err)
		return
	}

	item, err := res.Create(r.Context(), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, item)
}

func (res Resource[T, In]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	var in In
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, err)
		return
	}

	item, err := res.Update(r.Context(), id, in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, item)
}

func (res Resource[T, In]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	if err := res.Delete(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Message(w, res.Name+" deleted")
}
