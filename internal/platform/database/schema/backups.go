package schema

// BackupsTable represents the 'database_backups' table.
type BackupsTable struct {
	Table     string
	ID        string
	Filename  string
	CreatedAt string
	Size      string
	Scheduled string
	Notes     string
	ObjectKey string
}

// Backups is the schema definition for database_backups.
var Backups = BackupsTable{
	Table:     "database_backups",
	ID:        "id",
	Filename:  "filename",
	CreatedAt: "created_at",
	Size:      "size",
	Scheduled: "scheduled",
	Notes:     "notes",
	ObjectKey: "object_key",
}

func (t BackupsTable) Columns() []any {
	return []any{t.ID, t.Filename, t.CreatedAt, t.Size, t.Scheduled, t.Notes, t.ObjectKey}
}
