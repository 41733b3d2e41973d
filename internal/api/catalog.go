// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookstore/internal/backend"
	"github.com/taibuivan/bookstore/internal/catalog"
	"github.com/taibuivan/bookstore/internal/platform/middleware"
	requestutil "github.com/taibuivan/bookstore/internal/platform/request"
	"github.com/taibuivan/bookstore/internal/platform/respond"
	"github.com/taibuivan/bookstore/pkg/pagination"
)

// paginated renders a backend page with the storefront's meta block.
func paginated[T any](writer http.ResponseWriter, page backend.Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	respond.Paginated(writer, items, pagination.NewMeta(page.Number, page.Size, page.TotalElements, page.TotalPages))
}

// # Catalog

// catalogHandler drives the visitor's catalog listing.
type catalogHandler struct{}

// Routes mounts the listing endpoints.
//
// The listing is stateful: filters set through these endpoints persist in the
// visitor's workspace and GET returns the latest result.
func (handler *catalogHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.state)
	router.Post("/load", handler.load)
	router.Put("/search", handler.search)
	router.Put("/category", handler.category)
	router.Put("/page", handler.page)
	router.Get("/categories", handler.categories)

	return router
}

type catalogView struct {
	catalog.State
	Pages   []pagination.Item `json:"pages"`
	HasPrev bool              `json:"hasPrev"`
	HasNext bool              `json:"hasNext"`
}

func viewOf(state catalog.State) catalogView {
	return catalogView{
		State:   state,
		Pages:   state.Window(),
		HasPrev: pagination.HasPrev(state.Page),
		HasNext: pagination.HasNext(state.Page, state.TotalPages),
	}
}

/*
GET /storefront/v1/catalog.

Response:
  - 200: catalogView (books, filters, loading flag, page strip, prev/next)
*/
func (handler *catalogHandler) state(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, viewOf(workspaceFrom(request).Catalog.State()))
}

/*
POST /storefront/v1/catalog/load.

Description: Fetches the first page. A "category" query parameter applies a
deep-linked category by name before loading; "categoryId" selects one by id.

Request:
  - category: string (optional, matched ignoring case and accents)
  - categoryId: int64 (optional)
*/
func (handler *catalogHandler) load(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	query := workspaceFrom(request).Catalog

	if name := request.URL.Query().Get("category"); name != "" {
		matched, err := query.SelectCategoryByName(ctx, name)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if matched {
			respond.OK(writer, viewOf(query.State()))
			return
		}
	}

	categoryID, err := requestutil.OptionalID(request, "categoryId")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if categoryID != nil && !sameCategory(query.State().CategoryID, categoryID) {
		if err := query.SetCategory(ctx, categoryID); err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, viewOf(query.State()))
		return
	}

	if err := query.Load(ctx); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, viewOf(query.State()))
}

func sameCategory(current, requested *int64) bool {
	return current != nil && requested != nil && *current == *requested
}

/*
PUT /storefront/v1/catalog/search.

Description: Stores the search text. The fetch happens after the debounce
period; poll GET /catalog for the result.

Request:
  - body: {text: string}

Response:
  - 202: catalogView as of now
*/
func (handler *catalogHandler) search(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := workspaceFrom(request).Catalog
	query.SetSearchText(body.Text)
	respond.JSON(writer, http.StatusAccepted, respond.SuccessEnvelope{Data: viewOf(query.State())})
}

/*
PUT /storefront/v1/catalog/category.

Description: Toggles the category filter. Sending the active id, or null,
shows all categories.

Request:
  - body: {categoryId: int64 | null}
*/
func (handler *catalogHandler) category(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		CategoryID *int64 `json:"categoryId"`
	}
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := workspaceFrom(request).Catalog
	if err := query.SetCategory(request.Context(), body.CategoryID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, viewOf(query.State()))
}

/*
PUT /storefront/v1/catalog/page.

Description: Moves to a page. Out-of-range pages leave the listing as it is.

Request:
  - body: {page: int}
*/
func (handler *catalogHandler) page(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Page int `json:"page"`
	}
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := workspaceFrom(request).Catalog
	if err := query.SetPage(request.Context(), body.Page); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, viewOf(query.State()))
}

func (handler *catalogHandler) categories(writer http.ResponseWriter, request *http.Request) {
	categories, err := workspaceFrom(request).Catalog.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

// # Books & Reviews

// bookHandler serves book details and their reviews.
type bookHandler struct{}

func (handler *bookHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{bookID}", handler.details)
	router.Get("/{bookID}/reviews", handler.listReviews)

	router.Group(func(signedIn chi.Router) {
		signedIn.Use(middleware.RequireSession(resolveSession))

		signedIn.Post("/{bookID}/reviews", handler.createReview)
		signedIn.Put("/{bookID}/reviews/{reviewID}", handler.updateReview)
		signedIn.Delete("/{bookID}/reviews/{reviewID}", handler.deleteReview)
	})

	return router
}

type bookView struct {
	backend.Book
	Excerpt string `json:"excerpt"`
	InStock bool   `json:"inStock"`
}

/*
GET /storefront/v1/books/{bookID}.

Response:
  - 200: bookView (details plus a 100-word description excerpt)
  - 404: NOT_FOUND
*/
func (handler *bookHandler) details(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := workspaceFrom(request).Catalog.Book(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, bookView{
		Book:    book,
		Excerpt: catalog.Excerpt(book.Description, catalog.ExcerptWords),
		InStock: book.InStock(),
	})
}

func (handler *bookHandler) listReviews(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listing, err := workspaceFrom(request).Reviews.List(request.Context(), bookID, pagination.PageFromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

func (handler *bookHandler) createReview(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body backend.ReviewRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := workspaceFrom(request).Reviews.Create(request.Context(), bookID, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, review)
}

func (handler *bookHandler) updateReview(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	reviewID, err := requestutil.ID(request, "reviewID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body backend.ReviewRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := workspaceFrom(request).Reviews.Update(request.Context(), bookID, reviewID, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, review)
}

func (handler *bookHandler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	reviewID, err := requestutil.ID(request, "reviewID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspaceFrom(request).Reviews.Delete(request.Context(), bookID, reviewID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
