package schema

// BooksTable represents the 'books' table.
type BooksTable struct {
	Table           string
	ID              string
	Title           string
	Author          string
	ISBN            string
	CopyNumber      string
	PublicationDate string
	Pages           string
	Chapters        string
	AcquisitionDate string
	Categories      string
	Tags            string
	Notes           string
	Deleted         string
	DeletedAt       string
	DeleteBatch     string
	CreatedAt       string
}

// Books is the schema definition for books.
var Books = BooksTable{
	Table:           "books",
	ID:              "id",
	Title:           "title",
	Author:          "author",
	ISBN:            "isbn",
	CopyNumber:      "copy_number",
	PublicationDate: "publication_date",
	Pages:           "pages",
	Chapters:        "chapters",
	AcquisitionDate: "acquisition_date",
	Categories:      "categories",
	Tags:            "tags",
	Notes:           "notes",
	Deleted:         "deleted",
	DeletedAt:       "deleted_at",
	DeleteBatch:     "delete_batch",
	CreatedAt:       "created_at",
}

func (t BooksTable) Columns() []any {
	return []any{
		t.ID, t.Title, t.Author, t.ISBN, t.CopyNumber, t.PublicationDate, t.Pages, t.Chapters,
		t.AcquisitionDate, t.Categories, t.Tags, t.Notes, t.Deleted, t.DeletedAt, t.DeleteBatch, t.CreatedAt,
	}
}
