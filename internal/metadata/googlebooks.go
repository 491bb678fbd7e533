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

const googleBooksBase = "https://www.googleapis.com/books/v1"

// googleVolumes is the response of GET /volumes?q=...
type googleVolumes struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo googleVolumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type googleVolumeInfo struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	PageCount           int      `json:"pageCount"`
	Categories          []string `json:"categories"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
}

// GoogleBooks queries the Google Books volumes API.
type GoogleBooks struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewGoogleBooks creates the source. apiKey may be empty for anonymous quota.
func NewGoogleBooks(apiKey string) *GoogleBooks {
	return &GoogleBooks{client: newHTTPClient(), baseURL: googleBooksBase, apiKey: apiKey}
}

// WithBaseURL points the source at another endpoint.
func (source *GoogleBooks) WithBaseURL(baseURL string) *GoogleBooks {
	source.baseURL = strings.TrimRight(baseURL, "/")
	return source
}

func (source *GoogleBooks) Name() string  { return "google_books" }
func (source *GoogleBooks) Priority() int { return 10 }

func (source *GoogleBooks) LookupISBN(ctx context.Context, isbn string) (*Record, error) {
	volumes, err := source.volumes(ctx, "isbn:"+isbn, 1)
	if err != nil {
		return nil, err
	}
	if len(volumes.Items) == 0 {
		return nil, nil
	}

	record := recordFromVolume(volumes.Items[0].VolumeInfo)
	record.ISBN = isbn
	return &record, nil
}

func (source *GoogleBooks) Search(ctx context.Context, title, author string, limit int) ([]Record, error) {
	query := "intitle:" + title
	if author = strings.TrimSpace(author); author != "" {
		query += "+inauthor:" + author
	}

	volumes, err := source.volumes(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, item := range volumes.Items {
		if item.VolumeInfo.Title == "" {
			continue
		}
		records = append(records, recordFromVolume(item.VolumeInfo))
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

func (source *GoogleBooks) volumes(ctx context.Context, query string, maxResults int) (*googleVolumes, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if source.apiKey != "" {
		params.Set("key", source.apiKey)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google books: build request: %w", err)
	}

	response, err := source.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("google books: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", response.StatusCode)
	}

	var volumes googleVolumes
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(response.Body).Decode(&volumes); err != nil {
		return nil, fmt.Errorf("google books: decode: %w", err)
	}
	return &volumes, nil
}

func recordFromVolume(info googleVolumeInfo) Record {
	record := Record{
		Title:           strings.TrimSpace(info.Title),
		Author:          strings.Join(info.Authors, ", "),
		PublicationDate: info.PublishedDate,
		Categories:      info.Categories,
		Description:     truncateDescription(info.Description),
	}
	if info.Subtitle != "" && record.Title != "" {
		record.Title += ": " + info.Subtitle
	}
	if info.PageCount > 0 {
		record.Pages = pointer.To(info.PageCount)
	}
	for _, identifier := range info.IndustryIdentifiers {
		if identifier.Type == "ISBN_13" || identifier.Type == "ISBN_10" {
			record.ISBN = identifier.Identifier
			break
		}
	}
	return record
}
