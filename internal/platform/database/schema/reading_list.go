package schema

// ReadingListTable represents the 'reading_list' table.
type ReadingListTable struct {
	Table         string
	ID            string
	BookID        string
	SortOrder     string
	AddedDate     string
	Notes         string
	Completed     string
	CompletedDate string
}

// ReadingList is the schema definition for reading_list.
// The position column is sort_order because ORDER is reserved.
var ReadingList = ReadingListTable{
	Table:         "reading_list",
	ID:            "id",
	BookID:        "book_id",
	SortOrder:     "sort_order",
	AddedDate:     "added_date",
	Notes:         "notes",
	Completed:     "completed",
	CompletedDate: "completed_date",
}

func (t ReadingListTable) Columns() []any {
	return []any{t.ID, t.BookID, t.SortOrder, t.AddedDate, t.Notes, t.Completed, t.CompletedDate}
}
