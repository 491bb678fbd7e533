// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/taibuivan/librarium/internal/platform/database"
	"github.com/taibuivan/librarium/internal/platform/database/schema"
	"github.com/taibuivan/librarium/internal/platform/dberr"
	"github.com/taibuivan/librarium/pkg/labels"
	"github.com/taibuivan/librarium/pkg/pointer"
)

// SQLRepository implements [Repository] on either supported driver.
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (repository *SQLRepository) CreateBook(ctx context.Context, book *Book) error {
	isbn := pointer.Val(book.ISBN)

	return repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {

		// 1. Serialize with every other writer of this ISBN group
		if err := LockISBN(ctx, repository.db, tx, isbn); err != nil {
			return err
		}

		// 2. Read the group maximum under the lock
		copyNumber, err := NextCopyNumberIn(ctx, repository.db, tx, isbn)
		if err != nil {
			return err
		}

		// 3. Insert with the computed number
		book.CopyNumber = copyNumber
		book.CreatedAt = time.Now().UTC()

		record := editableRecord(book)
		record[schema.Books.CopyNumber] = book.CopyNumber
		record[schema.Books.Deleted] = false
		record[schema.Books.CreatedAt] = book.CreatedAt

		id, err := repository.db.InsertID(ctx, tx, repository.db.InsertInto(schema.Books.Table).Rows(record))
		if err != nil {
			return dberr.Wrap(err, "insert book")
		}
		book.ID = id
		return nil
	})
}

func (repository *SQLRepository) UpdateBook(ctx context.Context, book *Book) error {
	return repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {

		// 1. Load the stored row to learn the previous ISBN
		var stored Book
		err := database.Get(ctx, tx, &stored, repository.db.From(schema.Books.Table).
			Select(schema.Books.Columns()...).
			Where(goqu.C(schema.Books.ID).Eq(book.ID)))
		if err != nil {
			return dberr.WrapNotFound(err, "Book", "load book for update")
		}

		record := editableRecord(book)
		book.CopyNumber = stored.CopyNumber

		// 2. Moving to another ISBN group takes that group's next number for now
		oldISBN, newISBN := stored.ISBNValue(), pointer.Val(book.ISBN)
		moved := newISBN != oldISBN
		if moved {
			first, second := oldISBN, newISBN
			if second < first {
				first, second = second, first
			}
			for _, isbn := range []string{first, second} {
				if err := LockISBN(ctx, repository.db, tx, isbn); err != nil {
					return err
				}
			}
			copyNumber, err := NextCopyNumberIn(ctx, repository.db, tx, newISBN)
			if err != nil {
				return err
			}
			book.CopyNumber = copyNumber
			record[schema.Books.CopyNumber] = copyNumber
		}

		// 3. Write
		if _, err := database.Exec(ctx, tx, repository.db.Update(schema.Books.Table).
			Set(record).
			Where(goqu.C(schema.Books.ID).Eq(book.ID))); err != nil {
			return dberr.Wrap(err, "update book")
		}

		// 4. A live book slots into the new group by id; the old group closes its gap
		if moved && !stored.Deleted {
			for _, isbn := range []string{oldISBN, newISBN} {
				if _, err := repository.renumberGroupIn(ctx, tx, isbn); err != nil {
					return err
				}
			}
			if err := database.Get(ctx, tx, &book.CopyNumber, repository.db.From(schema.Books.Table).
				Select(schema.Books.CopyNumber).
				Where(goqu.C(schema.Books.ID).Eq(book.ID))); err != nil {
				return dberr.Wrap(err, "reload copy number")
			}
		}

		book.Deleted = stored.Deleted
		book.DeletedAt = stored.DeletedAt
		book.CreatedAt = stored.CreatedAt
		return nil
	})
}

func (repository *SQLRepository) GetBook(ctx context.Context, id int64) (*Book, error) {
	book := &Book{}
	err := database.Get(ctx, repository.db, book, repository.db.From(schema.Books.Table).
		Select(schema.Books.Columns()...).
		Where(goqu.C(schema.Books.ID).Eq(id)))
	if err != nil {
		return nil, dberr.WrapNotFound(err, "Book", "get book")
	}
	return book, nil
}

func (repository *SQLRepository) ListBooks(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	conditions := []exp.Expression{goqu.C(schema.Books.Deleted).IsFalse()}

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		conditions = append(conditions, goqu.Or(
			likeEscaped(goqu.Func("LOWER", goqu.C(schema.Books.Title)), pattern),
			likeEscaped(goqu.Func("LOWER", goqu.C(schema.Books.Author)), pattern),
			likeEscaped(goqu.Func("LOWER", goqu.C(schema.Books.ISBN)), pattern),
		))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		conditions = append(conditions, hasLabel(schema.Books.Categories, category))
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		conditions = append(conditions, hasLabel(schema.Books.Tags, tag))
	}

	var total int
	if err := database.Get(ctx, repository.db, &total, repository.db.From(schema.Books.Table).
		Select(goqu.COUNT(goqu.Star())).
		Where(conditions...)); err != nil {
		return nil, 0, dberr.Wrap(err, "count books")
	}

	books := []*Book{}
	if err := database.Select(ctx, repository.db, &books, repository.db.From(schema.Books.Table).
		Select(schema.Books.Columns()...).
		Where(conditions...).
		Order(goqu.C(schema.Books.Title).Asc(), goqu.C(schema.Books.ID).Asc()).
		Limit(uint(limit)).
		Offset(uint(offset))); err != nil {
		return nil, 0, dberr.Wrap(err, "list books")
	}

	return books, total, nil
}

func (repository *SQLRepository) FindByISBN(ctx context.Context, isbn string) ([]*Book, error) {
	books := []*Book{}
	err := database.Select(ctx, repository.db, &books, repository.db.From(schema.Books.Table).
		Select(schema.Books.Columns()...).
		Where(
			goqu.C(schema.Books.ISBN).Eq(isbn),
			goqu.C(schema.Books.Deleted).IsFalse(),
		).
		Order(goqu.C(schema.Books.CopyNumber).Asc(), goqu.C(schema.Books.ID).Asc()))
	if err != nil {
		return nil, dberr.Wrap(err, "find books by isbn")
	}
	return books, nil
}

func (repository *SQLRepository) NextCopyNumber(ctx context.Context, isbn string) (int, error) {
	return NextCopyNumberIn(ctx, repository.db, repository.db, isbn)
}

// copyRow is the projection used while renumbering.
type copyRow struct {
	ID         int64  `db:"id"`
	ISBN       string `db:"isbn"`
	CopyNumber int    `db:"copy_number"`
}

func (repository *SQLRepository) RenumberAll(ctx context.Context) (RenumberReport, error) {
	var report RenumberReport

	err := repository.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		live := []exp.Expression{
			goqu.C(schema.Books.Deleted).IsFalse(),
			goqu.C(schema.Books.ISBN).IsNotNull(),
			goqu.C(schema.Books.ISBN).Neq(""),
		}

		// 1. Lock every group in a stable order so concurrent adds wait
		var isbns []string
		if err := database.Select(ctx, tx, &isbns, repository.db.From(schema.Books.Table).
			Select(schema.Books.ISBN).Distinct().
			Where(live...).
			Order(goqu.C(schema.Books.ISBN).Asc())); err != nil {
			return dberr.Wrap(err, "list isbn groups")
		}
		for _, isbn := range isbns {
			if err := LockISBN(ctx, repository.db, tx, isbn); err != nil {
				return err
			}
		}

		// 2. Read the groups in id order
		var rows []copyRow
		if err := database.Select(ctx, tx, &rows, repository.db.From(schema.Books.Table).
			Select(schema.Books.ID, schema.Books.ISBN, schema.Books.CopyNumber).
			Where(live...).
			Order(goqu.C(schema.Books.ISBN).Asc(), goqu.C(schema.Books.ID).Asc())); err != nil {
			return dberr.Wrap(err, "load isbn groups")
		}

		// 3. Write only the rows whose number moves
		for start := 0; start < len(rows); {
			end := start
			for end < len(rows) && rows[end].ISBN == rows[start].ISBN {
				end++
			}
			report.Groups++

			updated, err := repository.applyNumbers(ctx, tx, rows[start:end])
			if err != nil {
				return err
			}
			report.Updated += updated

			start = end
		}
		return nil
	})

	return report, err
}

// renumberGroupIn numbers the live books of one ISBN as 1..N in id order.
// The caller holds the group's lock.
func (repository *SQLRepository) renumberGroupIn(ctx context.Context, tx *sqlx.Tx, isbn string) (int, error) {
	if isbn == "" {
		return 0, nil
	}

	var group []copyRow
	if err := database.Select(ctx, tx, &group, repository.db.From(schema.Books.Table).
		Select(schema.Books.ID, schema.Books.ISBN, schema.Books.CopyNumber).
		Where(
			goqu.C(schema.Books.ISBN).Eq(isbn),
			goqu.C(schema.Books.Deleted).IsFalse(),
		).
		Order(goqu.C(schema.Books.ID).Asc())); err != nil {
		return 0, dberr.Wrap(err, "load isbn group")
	}
	return repository.applyNumbers(ctx, tx, group)
}

// applyNumbers writes position+1 to every row of an id-ordered group whose
// stored number differs.
func (repository *SQLRepository) applyNumbers(ctx context.Context, tx *sqlx.Tx, group []copyRow) (int, error) {
	current := make([]int, len(group))
	for i, row := range group {
		current[i] = row.CopyNumber
	}

	changed := renumberGroup(current)
	for _, position := range changed {
		if _, err := database.Exec(ctx, tx, repository.db.Update(schema.Books.Table).
			Set(goqu.Record{schema.Books.CopyNumber: position + 1}).
			Where(goqu.C(schema.Books.ID).Eq(group[position].ID))); err != nil {
			return 0, dberr.Wrap(err, "renumber book")
		}
	}
	return len(changed), nil
}

func (repository *SQLRepository) LabelColumn(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	err := database.Select(ctx, repository.db, &values, repository.db.From(schema.Books.Table).
		Select(column).
		Where(
			goqu.C(schema.Books.Deleted).IsFalse(),
			goqu.C(column).Neq(""),
		).
		Order(goqu.C(schema.Books.ID).Asc()))
	if err != nil {
		return nil, dberr.Wrap(err, "list labels")
	}
	return values, nil
}

// editableRecord maps the user-editable fields to columns.
func editableRecord(book *Book) goqu.Record {
	return goqu.Record{
		schema.Books.Title:           book.Title,
		schema.Books.Author:          book.Author,
		schema.Books.ISBN:            book.ISBN,
		schema.Books.PublicationDate: book.PublicationDate,
		schema.Books.Pages:           book.Pages,
		schema.Books.Chapters:        book.Chapters,
		schema.Books.AcquisitionDate: book.AcquisitionDate,
		schema.Books.Categories:      book.Categories,
		schema.Books.Tags:            book.Tags,
		schema.Books.Notes:           book.Notes,
	}
}

// likeEscape is the escape character declared by [likeEscaped].
const likeEscape = `\`

// escapeLike makes the LIKE wildcards in value match literally.
func escapeLike(value string) string {
	return strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_").Replace(value)
}

// likeEscaped matches expr against an [escapeLike] pattern on both drivers.
func likeEscaped(expr exp.Expression, pattern string) exp.Expression {
	return goqu.L("? LIKE ? ESCAPE '"+likeEscape+"'", expr, pattern)
}

// hasLabel matches one whole label, case-insensitively, inside a stored
// ", " separated list.
func hasLabel(column, label string) exp.Expression {
	wrapped := goqu.L("? || LOWER(?) || ?", labels.Separator, goqu.C(column), labels.Separator)
	pattern := "%" + labels.Separator + escapeLike(strings.ToLower(label)) + labels.Separator + "%"
	return likeEscaped(wrapped, pattern)
}
