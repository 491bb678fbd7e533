package schema

// LendingsTable represents the 'book_lending' table.
type LendingsTable struct {
	Table        string
	ID           string
	BookID       string
	BorrowerName string
	LentDate     string
	DueDate      string
	ReturnDate   string
	Notes        string
	Deleted      string
	DeletedAt    string
	DeleteBatch  string
}

// Lendings is the schema definition for book_lending.
var Lendings = LendingsTable{
	Table:        "book_lending",
	ID:           "id",
	BookID:       "book_id",
	BorrowerName: "borrower_name",
	LentDate:     "lent_date",
	DueDate:      "due_date",
	ReturnDate:   "return_date",
	Notes:        "notes",
	Deleted:      "deleted",
	DeletedAt:    "deleted_at",
	DeleteBatch:  "delete_batch",
}

func (t LendingsTable) Columns() []any {
	return []any{
		t.ID, t.BookID, t.BorrowerName, t.LentDate, t.DueDate, t.ReturnDate,
		t.Notes, t.Deleted, t.DeletedAt, t.DeleteBatch,
	}
}
