package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/partscout/internal/api/response"
	"github.com/kiranshivaraju/partscout/internal/catalog"
)

type candidatesResponse[T any] struct {
	Query      string `json:"query"`
	Candidates []T    `json:"candidates"`
}

// NewListBrandsHandler returns an http.HandlerFunc for GET /api/v1/catalog/brands.
func NewListBrandsHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		response.JSON(w, candidatesResponse[string]{Query: q, Candidates: cat.FilterBrands(q)})
	}
}

// NewListModelsHandler returns an http.HandlerFunc for
// GET /api/v1/catalog/brands/{brand}/models.
func NewListModelsHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brand, ok := cat.FindBrand(pathParam(r, "brand"))
		if !ok {
			response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Unknown brand", nil)
			return
		}
		q := r.URL.Query().Get("q")
		response.JSON(w, candidatesResponse[string]{Query: q, Candidates: cat.FilterModels(brand, q)})
	}
}

// NewListYearsHandler returns an http.HandlerFunc for
// GET /api/v1/catalog/brands/{brand}/models/{model}/years.
func NewListYearsHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, model, ok := cat.Lookup(pathParam(r, "brand"), pathParam(r, "model"))
		if !ok {
			response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Unknown brand or model", nil)
			return
		}
		q := r.URL.Query().Get("q")
		response.JSON(w, candidatesResponse[int]{Query: q, Candidates: cat.FilterYears(model, q)})
	}
}

// pathParam returns the unescaped chi URL parameter. Names such as
// "Land Rover" arrive percent-encoded.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
