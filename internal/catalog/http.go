// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librarium/internal/metadata"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	requestutil "github.com/taibuivan/librarium/internal/platform/request"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/internal/platform/validate"
	"github.com/taibuivan/librarium/pkg/dateonly"
	"github.com/taibuivan/librarium/pkg/labels"
	"github.com/taibuivan/librarium/pkg/pagination"
	querystring "github.com/taibuivan/librarium/pkg/query"
)

// unknownAuthor fills the author when a metadata record lacks one.
const unknownAuthor = "Unknown Author"

// MetadataLookup resolves an ISBN to bibliographic data.
type MetadataLookup interface {
	LookupISBN(ctx context.Context, isbn string) (*metadata.Record, error)
}

type Handler struct {
	service *Service
	lookup  MetadataLookup
}

func NewHandler(service *Service, lookup MetadataLookup) *Handler {
	return &Handler{service: service, lookup: lookup}
}

// RegisterRoutes mounts the public catalog routes. Deleting a book is owned by
// the trash handler because it cascades into lendings.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/books", handler.listBooks)
	router.Post("/books", handler.addBook)
	router.Post("/books/isbn", handler.addBookByISBN)
	router.Get("/books/categories", handler.listCategories)
	router.Get("/books/tags", handler.listTags)
	router.Get("/books/by-isbn/{isbn}", handler.findByISBN)
	router.Get("/books/{id}", handler.getBook)
	router.Put("/books/{id}", handler.editBook)
}

// RegisterAdminRoutes mounts maintenance routes on the admin sub-router.
func (handler *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/fix-copy-numbers", handler.fixCopyNumbers)
}

// bookResponse adds the derived display fields to a book.
type bookResponse struct {
	*Book
	DisplayTitle  string   `json:"display_title"`
	FormattedISBN string   `json:"formatted_isbn,omitempty"`
	CategoryList  []string `json:"category_list"`
	TagList       []string `json:"tag_list"`
}

func present(book *Book) bookResponse {
	return bookResponse{
		Book:          book,
		DisplayTitle:  book.DisplayTitle(),
		FormattedISBN: book.FormattedISBN(),
		CategoryList:  nonNil(book.CategoryList()),
		TagList:       nonNil(book.TagList()),
	}
}

func presentAll(books []*Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, book := range books {
		out = append(out, present(book))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Query:    querystring.Text(query, "q"),
		Category: querystring.Text(query, "category"),
		Tag:      querystring.Text(query, "tag"),
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, presentAll(books), pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetBook(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, present(book))
}

func (handler *Handler) addBook(writer http.ResponseWriter, request *http.Request) {
	var input BookInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.AddBook(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, present(book))
}

type isbnRequest struct {
	ISBN     string `json:"isbn"`
	Chapters *int   `json:"chapters"`
	Tags     string `json:"tags"`
}

// addBookByISBN fills a new book from external metadata.
func (handler *Handler) addBookByISBN(writer http.ResponseWriter, request *http.Request) {
	var input isbnRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldISBN, input.ISBN).ISBN(FieldISBN, input.ISBN)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.lookup.LookupISBN(request.Context(), input.ISBN)
	if err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Metadata lookup is unavailable"))
		return
	}
	if record.IsEmpty() {
		respond.Error(writer, request, validate.FieldErr(FieldISBN, "Could not find book data for this ISBN"))
		return
	}

	author := record.Author
	if strings.TrimSpace(author) == "" {
		author = unknownAuthor
	}

	book, err := handler.service.AddBook(request.Context(), BookInput{
		Title:           record.Title,
		Author:          author,
		ISBN:            input.ISBN,
		PublicationDate: record.PublicationDate,
		Pages:           record.Pages,
		Chapters:        input.Chapters,
		AcquisitionDate: dateonly.Today().Format(dateonly.Layout),
		Categories:      labels.Join(record.Categories),
		Tags:            input.Tags,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, present(book))
}

func (handler *Handler) editBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input BookInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.EditBook(request.Context(), bookID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, present(book))
}

func (handler *Handler) findByISBN(writer http.ResponseWriter, request *http.Request) {
	books, err := handler.service.FindByISBN(request.Context(), requestutil.Param(request, "isbn"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, presentAll(books))
}

func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, nonNil(categories))
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.Tags(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, nonNil(tags))
}

func (handler *Handler) fixCopyNumbers(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.service.RenumberCopies(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}
