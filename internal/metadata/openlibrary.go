// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/taibuivan/librarium/pkg/pointer"
)

const openLibraryBase = "https://openlibrary.org"

// maxSubjects keeps Open Library's long subject lists usable as categories.
const maxSubjects = 5

type openLibraryName struct {
	Name string `json:"name"`
}

type openLibraryEdition struct {
	Title         string            `json:"title"`
	Subtitle      string            `json:"subtitle"`
	Authors       []openLibraryName `json:"authors"`
	PublishDate   string            `json:"publish_date"`
	NumberOfPages int               `json:"number_of_pages"`
	Subjects      []openLibraryName `json:"subjects"`
}

type openLibrarySearch struct {
	Docs []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		ISBN             []string `json:"isbn"`
		FirstPublishYear int      `json:"first_publish_year"`
		PagesMedian      int      `json:"number_of_pages_median"`
		Subject          []string `json:"subject"`
	} `json:"docs"`
}

// OpenLibrary queries the Open Library books and search APIs.
type OpenLibrary struct {
	client  *http.Client
	baseURL string
}

func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{client: newHTTPClient(), baseURL: openLibraryBase}
}

// WithBaseURL points the source at another endpoint.
func (source *OpenLibrary) WithBaseURL(baseURL string) *OpenLibrary {
	source.baseURL = strings.TrimRight(baseURL, "/")
	return source
}

func (source *OpenLibrary) Name() string  { return "open_library" }
func (source *OpenLibrary) Priority() int { return 20 }

func (source *OpenLibrary) LookupISBN(ctx context.Context, isbn string) (*Record, error) {
	params := url.Values{}
	params.Set("bibkeys", "ISBN:"+isbn)
	params.Set("format", "json")
	params.Set("jscmd", "data")

	var editions map[string]openLibraryEdition
	if err := source.get(ctx, "/api/books?"+params.Encode(), &editions); err != nil {
		return nil, err
	}

	edition, ok := editions["ISBN:"+isbn]
	if !ok {
		return nil, nil
	}

	record := Record{
		Title:           strings.TrimSpace(edition.Title),
		ISBN:            isbn,
		PublicationDate: edition.PublishDate,
	}
	if edition.Subtitle != "" && record.Title != "" {
		record.Title += ": " + edition.Subtitle
	}

	authors := make([]string, 0, len(edition.Authors))
	for _, author := range edition.Authors {
		authors = append(authors, author.Name)
	}
	record.Author = strings.Join(authors, ", ")

	for index, subject := range edition.Subjects {
		if index == maxSubjects {
			break
		}
		record.Categories = append(record.Categories, subject.Name)
	}
	if edition.NumberOfPages > 0 {
		record.Pages = pointer.To(edition.NumberOfPages)
	}
	return &record, nil
}

func (source *OpenLibrary) Search(ctx context.Context, title, author string, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("title", title)
	if author = strings.TrimSpace(author); author != "" {
		params.Set("author", author)
	}
	params.Set("limit", strconv.Itoa(limit))

	var result openLibrarySearch
	if err := source.get(ctx, "/search.json?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	var records []Record
	for _, doc := range result.Docs {
		if doc.Title == "" {
			continue
		}
		record := Record{Title: doc.Title, Author: strings.Join(doc.AuthorName, ", ")}
		if len(doc.ISBN) > 0 {
			record.ISBN = doc.ISBN[0]
		}
		if doc.FirstPublishYear > 0 {
			record.PublicationDate = strconv.Itoa(doc.FirstPublishYear)
		}
		if doc.PagesMedian > 0 {
			record.Pages = pointer.To(doc.PagesMedian)
		}
		if len(doc.Subject) > maxSubjects {
			doc.Subject = doc.Subject[:maxSubjects]
		}
		record.Categories = doc.Subject
		records = append(records, record)
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

func (source *OpenLibrary) get(ctx context.Context, path string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("open library: build request: %w", err)
	}

	response, err := source.client.Do(request)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("open library returned %d", response.StatusCode)
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("open library: decode: %w", err)
	}
	return nil
}
